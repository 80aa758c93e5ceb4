package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

// articleDescriptionLimit bounds descriptions in the articles file.
const articleDescriptionLimit = 500

// BuildPrompt builds the minimal execution prompt. The agent reads its
// mission files itself based on its own instructions; the prompt only
// carries the run parameters.
func BuildPrompt(missionID, articlesPath, executionID, researchPath, workflowExecutionID string, now time.Time) string {
	workflowID := workflowExecutionID
	if workflowID == "" {
		workflowID = "standalone"
	}

	return fmt.Sprintf(`=== EXECUTION PARAMETERS ===

mission: %s
articles_path: %s
execution_id: %s
research_path: %s
workflow_id: %s
date: %s

=== INSTRUCTIONS ===

Follow the startup protocol in your CLAUDE.md.
Read the mission files in the listed order before starting your analysis.

Replace {mission} with: %s
`, missionID, articlesPath, executionID, researchPath, workflowID,
		now.Format("2006-01-02 15:04"), missionID)
}

// WriteArticlesFile writes the collected articles as JSON for the agent to
// read, truncating long descriptions.
func WriteArticlesFile(articles []models.Article, path string) error {
	trimmed := make([]models.Article, len(articles))
	for i, a := range articles {
		trimmed[i] = a
		if len(a.Description) > articleDescriptionLimit {
			trimmed[i].Description = a.Description[:articleDescriptionLimit]
		}
	}

	data, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal articles: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create articles directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write articles file: %w", err)
	}
	return nil
}

package workflow

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/report"
	"github.com/Aceek/daily-ai-webhook/internal/runlog"
	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

// Resolver correlates workflow reports with execution run directories and
// writes them to disk.
type Resolver struct {
	root string
}

// NewResolver creates a resolver over the execution log root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Save files a workflow report. Resolution order:
//
//  1. explicitDir, when the caller already knows the run directory.
//  2. The run directory located by the report's claude execution id.
//  3. A standalone record under <root>/workflows/.
//
// On a correlated match the run's SUMMARY.md delivery and storage rows are
// patched in place. Patch failures are logged and swallowed: a late report
// must never fail because an old summary is missing or malformed.
func (r *Resolver) Save(rep *models.WorkflowReport, explicitDir string) (string, error) {
	content := report.RenderWorkflow(rep)

	if explicitDir != "" {
		return r.saveToDir(explicitDir, content, rep)
	}

	if rep.ClaudeExecutionID != "" {
		d, err := runlog.Locate(r.root, rep.ClaudeExecutionID)
		if err == nil {
			return r.saveToDir(d.Path(), content, rep)
		}
		if err != runlog.ErrNotFound {
			log.Printf("[workflow] locate %s: %v", rep.ClaudeExecutionID, err)
		}
	}

	return r.saveStandalone(content, rep)
}

// saveToDir writes workflow.md into the run directory and patches its
// summary.
func (r *Resolver) saveToDir(dir, content string, rep *models.WorkflowReport) (string, error) {
	path := filepath.Join(dir, "workflow.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write workflow report: %w", err)
	}

	r.patchSummary(dir, rep)
	return path, nil
}

// patchSummary rewrites the delivery and storage rows of the run's
// SUMMARY.md. Errors are logged, never returned.
func (r *Resolver) patchSummary(dir string, rep *models.WorkflowReport) {
	summaryPath := filepath.Join(dir, "SUMMARY.md")
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[workflow] read summary: %v", err)
		}
		return
	}

	var d *digest.Digest
	digestData, err := os.ReadFile(filepath.Join(dir, "digest.json"))
	if err == nil {
		d = &digest.Digest{}
		if jerr := json.Unmarshal(digestData, d); jerr != nil {
			d = nil
		}
	}

	patched := report.PatchSummary(string(data), rep, d)
	if patched == string(data) {
		return
	}
	if err := os.WriteFile(summaryPath, []byte(patched), 0644); err != nil {
		log.Printf("[workflow] patch summary: %v", err)
	}
}

// saveStandalone writes the report under <root>/workflows/ when no run
// directory matches.
func (r *Resolver) saveStandalone(content string, rep *models.WorkflowReport) (string, error) {
	dir := filepath.Join(r.root, "workflows")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create workflows directory: %w", err)
	}

	ts := rep.FinishedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	name := fmt.Sprintf("%s_%s.md", ts.Format("2006-01-02_150405"), sanitizeID(rep.WorkflowExecutionID))

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write standalone workflow report: %w", err)
	}
	return path, nil
}

// sanitizeID makes a workflow execution id safe for use in a filename.
func sanitizeID(id string) string {
	if id == "" {
		return "unknown"
	}
	safe := make([]rune, 0, len(id))
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			safe = append(safe, c)
		default:
			safe = append(safe, '-')
		}
	}
	return string(safe)
}

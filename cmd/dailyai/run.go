package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Aceek/daily-ai-webhook/internal/agent"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
	"github.com/Aceek/daily-ai-webhook/internal/orchestrator"
	"github.com/Aceek/daily-ai-webhook/pkg/models"
)

var (
	runMission    string
	runWorkflowID string
)

var runCmd = &cobra.Command{
	Use:   "run [articles.json]",
	Short: "Run a digest analysis on collected articles",
	Long: `Run one end-to-end digest analysis.

Reads the collected articles from the given JSON file (or stdin when the
argument is "-" or omitted), allocates an execution directory, and invokes
the agent. The run's artifacts land under the logs directory:

  logs/YYYY-MM-DD/HHMMSS_<id>/
      SUMMARY.md        human-readable run summary
      articles.json     staged input articles
      digest.json       the digest the agent submitted
      research.md       the agent's research notes
      raw/timeline.json condensed event timeline

Examples:
  dailyai run articles.json
  cat articles.json | dailyai run
  dailyai run articles.json --mission video-games --workflow-id wf-123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMission, "mission", "", "Mission to run (default from config)")
	runCmd.Flags().StringVar(&runWorkflowID, "workflow-id", "", "Upstream workflow execution id")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := CheckClaudeCLI(cfg.Claude.Binary); err != nil {
		return err
	}

	articles, err := readArticles(args)
	if err != nil {
		return err
	}

	svc := orchestrator.NewService(cfg, mission.NewRegistry(cfg.Missions.Dir),
		agent.NewInvoker(agent.Config{
			Binary:       cfg.Claude.Binary,
			Model:        cfg.Claude.Model,
			AllowedTools: cfg.Claude.AllowedTools,
			Timeout:      cfg.Claude.Timeout,
			Retries:      cfg.Claude.Retries,
			RetryDelay:   cfg.Claude.RetryDelay,
		}))

	out, err := svc.Run(cmd.Context(), orchestrator.RunRequest{
		Mission:             runMission,
		Articles:            articles,
		WorkflowExecutionID: runWorkflowID,
	})
	if err != nil {
		return err
	}

	if out.Run.Succeeded() {
		printStatus("✓", fmt.Sprintf("Run %s completed in %s", out.Run.ID,
			out.Run.Metrics.Duration.Round(time.Second)), color.FgGreen)
		if out.Digest != nil {
			printStatus("✓", fmt.Sprintf("Digest: %d items, %d excluded",
				out.Digest.ItemCount, out.Digest.ExcludedCount), color.FgGreen)
		}
	} else {
		printStatus("✗", fmt.Sprintf("Run %s failed: %s", out.Run.ID, out.Run.Error), color.FgRed)
	}
	fmt.Printf("Summary: %s\n", out.Dir.SummaryPath())

	if !out.Run.Succeeded() {
		os.Exit(1)
	}
	return nil
}

// readArticles loads the input articles from the file argument or stdin.
func readArticles(args []string) ([]models.Article, error) {
	var data []byte
	var err error

	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parse articles: %w", err)
	}
	return articles, nil
}

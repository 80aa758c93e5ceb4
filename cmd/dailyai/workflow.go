package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aceek/daily-ai-webhook/internal/workflow"
)

var logWorkflowDir string

var logWorkflowCmd = &cobra.Command{
	Use:   "log-workflow [report.json]",
	Short: "File an asynchronous workflow report",
	Long: `File a workflow report from the external automation engine.

The report is read from the given JSON file or stdin and correlated to the
execution run it belongs to by its claude_execution_id. On a match the
report is written as workflow.md inside the run directory and the run's
SUMMARY.md delivery rows are updated. When no run matches, the report is
stored standalone under the logs workflows/ directory.

This command always exits zero: a reporting hook must never fail the
pipeline that calls it.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogWorkflow,
}

func init() {
	logWorkflowCmd.Flags().StringVar(&logWorkflowDir, "dir", "", "Write into this run directory instead of resolving")
}

func runLogWorkflow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("[log-workflow] %v", err)
		return
	}

	var data []byte
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		log.Printf("[log-workflow] read report: %v", err)
		return
	}

	req := &workflow.ReportRequest{}
	if err := json.Unmarshal(data, req); err != nil {
		log.Printf("[log-workflow] parse report: %v", err)
		return
	}

	path, err := workflow.NewResolver(cfg.Logs.Dir).Save(req.ToReport(), logWorkflowDir)
	if err != nil {
		log.Printf("[log-workflow] save report: %v", err)
		return
	}
	fmt.Printf("Workflow report saved: %s\n", path)
}

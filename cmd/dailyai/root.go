package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Aceek/daily-ai-webhook/internal/config"
)

// CheckClaudeCLI verifies that the 'claude' CLI is available in PATH.
// Returns an error with installation instructions if not found.
func CheckClaudeCLI(binary string) error {
	_, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s CLI not found in PATH\n\n"+
			"dailyai drives the Claude Code CLI to analyze collected articles.\n\n"+
			"Install it with:\n"+
			"  npm install -g @anthropic-ai/claude-code", binary)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "dailyai",
	Short: "Daily AI news digest pipeline",
	Long: `dailyai runs an agentic daily news digest: it stages collected
articles in a per-execution log directory, invokes the Claude Code CLI to
analyze them, validates and archives the digest the agent submits, and
correlates late workflow reports back to their run.

Core capabilities:
- Allocates date-partitioned execution directories with full run artifacts
- Reduces the agent's stream-json output into timeline, token, and cost metrics
- Validates digest submissions against per-mission category schemas
- Archives digests and articles in SQLite with duplicate-URL suppression
- Files asynchronous workflow reports against the matching run`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(logWorkflowCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkURLsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// printStatus prints a colored status line.
func printStatus(symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

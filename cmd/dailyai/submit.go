package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aceek/daily-ai-webhook/internal/archive"
	"github.com/Aceek/daily-ai-webhook/internal/digest"
	"github.com/Aceek/daily-ai-webhook/internal/mission"
	"github.com/Aceek/daily-ai-webhook/internal/orchestrator"
)

var submitExecDir string

var submitCmd = &cobra.Command{
	Use:   "submit [submission.json]",
	Short: "Validate and archive a digest submission",
	Long: `Validate a digest submission and archive it in the database.

The submission is read from the given JSON file or stdin. The execution
directory defaults to the EXECUTION_DIR environment variable, which the run
command exports to the agent; digest.json is written there on acceptance.

The command prints a JSON result either way. Validation failures list every
problem and persist nothing. A database failure still writes digest.json,
just without a digest id.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitExecDir, "dir", "", "Execution directory (default $EXECUTION_DIR)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read submission: %w", err)
	}

	sub := &digest.Submission{}
	if err := json.Unmarshal(data, sub); err != nil {
		return fmt.Errorf("parse submission: %w", err)
	}

	execDir := submitExecDir
	if execDir == "" {
		execDir = os.Getenv("EXECUTION_DIR")
	}
	runID := ""
	if execDir != "" {
		runID = runIDFromDir(execDir)
	}

	db, err := archive.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	svc := orchestrator.NewSubmitService(archive.NewStore(db),
		mission.NewRegistry(cfg.Missions.Dir), cfg.Missions.Default)

	res, err := svc.Submit(cmd.Context(), sub, runID, execDir)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !res.Accepted {
		os.Exit(1)
	}
	return nil
}

// runIDFromDir recovers the run id from an execution directory name of the
// form HHMMSS_<id>.
func runIDFromDir(dir string) string {
	base := filepath.Base(dir)
	if len(base) > 7 && base[6] == '_' {
		return base[7:]
	}
	return base
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aceek/daily-ai-webhook/internal/archive"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recently archived digests",
	Long: `Display the most recent digests in the archive database.

Shows:
  - Mission and digest date
  - Selected and excluded item counts
  - The execution id of the run that produced each digest`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of digests to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
		fmt.Println("No digests archived yet. Run 'dailyai run <articles.json>' to start.")
		return nil
	}

	db, err := archive.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	digests, err := archive.NewStore(db).RecentDigests(cmd.Context(), statusLimit)
	if err != nil {
		return err
	}

	if len(digests) == 0 {
		fmt.Println("No digests archived yet. Run 'dailyai run <articles.json>' to start.")
		return nil
	}

	fmt.Println("Recent Digests:")
	for _, d := range digests {
		execID := d.ExecutionID
		if execID == "" {
			execID = "-"
		}
		fmt.Printf("  %s  %-12s %2d items, %2d excluded  (run %s)\n",
			d.Date, d.Mission, d.ItemCount, d.ExcludedCount, execID)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Aceek/daily-ai-webhook/internal/archive"
)

var (
	checkURLsMission string
	checkURLsDays    int
)

var checkURLsCmd = &cobra.Command{
	Use:   "check-urls <url>...",
	Short: "Check which URLs are already archived",
	Long: `Check collected article URLs against the archive.

URLs already stored for the mission within the lookback window are reported
as known; collectors can drop them before a run.

Examples:
  dailyai check-urls https://a.example/story
  dailyai check-urls --mission video-games --days 14 url1 url2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheckURLs,
}

func init() {
	checkURLsCmd.Flags().StringVar(&checkURLsMission, "mission", "", "Mission to check against (default from config)")
	checkURLsCmd.Flags().IntVar(&checkURLsDays, "days", 7, "Lookback window in days")
}

func runCheckURLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	missionID := checkURLsMission
	if missionID == "" {
		missionID = cfg.Missions.Default
	}

	db, err := archive.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	known, err := archive.NewStore(db).FilterKnownURLs(cmd.Context(), missionID, args, checkURLsDays)
	if err != nil {
		return err
	}

	knownSet := make(map[string]bool, len(known))
	for _, u := range known {
		knownSet[u] = true
	}

	for _, u := range args {
		if knownSet[u] {
			printStatus("✗", fmt.Sprintf("known: %s", u), color.FgYellow)
		} else {
			printStatus("✓", fmt.Sprintf("new:   %s", u), color.FgGreen)
		}
	}
	fmt.Printf("%d new, %d known\n", len(args)-len(known), len(known))
	return nil
}

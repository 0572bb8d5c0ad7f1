package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"journalclub/internal/model"
)

// statsCmd summarizes the seen store and the snapshot history.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and snapshot statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		engine, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		report, err := engine.Stats()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Decided articles: %d\n", report.Store.Total)
		for _, tier := range model.Tiers() {
			fmt.Fprintf(w, "  %-9s %d\n", tier, report.Store.ByTier[tier])
		}
		fmt.Fprintf(w, "Snapshots: %d\n", report.Snapshots)
		if report.Latest != nil {
			status := "live"
			if report.Latest.Superseded {
				status = "superseded"
			}
			fmt.Fprintf(w, "Latest: %s (%s, %d items, %s)\n",
				report.Latest.ID, report.Latest.CreatedAt.Format("2006-01-02 15:04"), report.Latest.Size, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

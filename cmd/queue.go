package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"journalclub/internal/model"
)

var (
	queueTier   string
	queueLimit  int
	queueUnread bool
)

// queueCmd lists decided articles by tier, oldest decision first.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List the reading queue for a tier",
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
		w := cmd.OutOrStdout()

		if queueTier == "" {
			report, err := engine.Stats()
			if err != nil {
				return err
			}
			for _, tier := range model.Tiers() {
				fmt.Fprintf(w, "%-9s %d\n", tier, report.Store.ByTier[tier])
			}
			return nil
		}

		tier, err := model.ParseTier(queueTier)
		if err != nil {
			return err
		}
		recs, err := engine.Queue(tier, queueLimit, queueUnread)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintf(w, "Queue %s is empty.\n", tier)
			return nil
		}
		for i, r := range recs {
			fmt.Fprintf(w, "%2d. [%s] %s (%s) first seen %s\n", i+1, r.State, r.Title, r.Identity.Key(), r.FirstSeen)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.Flags().StringVarP(&queueTier, "tier", "t", "", "tier to list (F, A, M, S or full name); omit for per-tier counts")
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "n", 0, "cap the listing (0 = all)")
	queueCmd.Flags().BoolVar(&queueUnread, "unread", false, "only items not yet advanced past their initial state")
}

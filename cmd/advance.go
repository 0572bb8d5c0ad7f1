package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"journalclub/internal/model"
)

// advanceCmd moves a decided article one step through its tier lifecycle,
// for example queued-full -> read after finishing the paper.
var advanceCmd = &cobra.Command{
	Use:   "advance <identity-key> <state>",
	Short: "Advance a decided article to its next state",
	Long: `Advance a decided article's state, addressed by identity key
(for example "doi:10.1234/abc" or "url:https://example.org/paper").

Only the single legal successor is accepted: queued-full -> read and
queued-abstract -> reviewed. Method and skip decisions have no further
states.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		id, err := model.ParseKey(args[0])
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		rec, err := engine.AdvanceState(id, model.State(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", rec.Title, rec.State)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(advanceCmd)
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	parseReplySnapshotID string
	parseReplyFromStdin  bool
)

// parseReplyCmd validates a reply without touching the store. Useful for
// checking what a reply body would do before sending it.
var parseReplyCmd = &cobra.Command{
	Use:   "parse-reply [token...]",
	Short: "Validate a reply without applying it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		text := strings.Join(args, " ")
		if parseReplyFromStdin {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(raw)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("empty reply: pass tokens as arguments or use --stdin")
		}

		engine, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		res, snap, err := engine.ParseReply(text, parseReplySnapshotID)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		switch {
		case snap == nil:
			fmt.Fprintln(w, "No snapshot to answer.")
		case snap.Superseded:
			fmt.Fprintf(w, "Against snapshot %s (superseded):\n", snap.ID)
		default:
			fmt.Fprintf(w, "Against snapshot %s:\n", snap.ID)
		}
		if res.ShowAll {
			fmt.Fprintln(w, "SHOW ALL: view-only request, nothing would change.")
			return nil
		}
		for _, sel := range res.Accepted {
			fmt.Fprintf(w, "would apply %s: ordinal %d -> %s\n", sel.Token, sel.Ordinal, sel.Tier)
		}
		for _, r := range res.Rejected {
			if r.Detail != "" {
				fmt.Fprintf(w, "rejected %q: %s (%s)\n", r.Token, r.Reason, r.Detail)
			} else {
				fmt.Fprintf(w, "rejected %q: %s\n", r.Token, r.Reason)
			}
		}
		fmt.Fprintf(w, "%d accepted, %d rejected.\n", len(res.Accepted), len(res.Rejected))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseReplyCmd)
	parseReplyCmd.Flags().StringVar(&parseReplySnapshotID, "snapshot", "", "snapshot ID the reply answers (default: latest)")
	parseReplyCmd.Flags().BoolVar(&parseReplyFromStdin, "stdin", false, "read the reply body from stdin")
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"journalclub/internal/digest"
	"journalclub/internal/reply"
	"journalclub/internal/store"
)

var (
	replySnapshotID string
	replyDigestFile string
	replyFromStdin  bool
)

// replyCmd applies a digest reply: tokens like "1F 3A 4S", or SHOW ALL to
// list the addressed snapshot without deciding anything.
var replyCmd = &cobra.Command{
	Use:   "reply [token...]",
	Short: "Apply tier decisions from a digest reply",
	Long: `Apply a digest reply against the latest snapshot (or --snapshot).

Each token is an ordinal followed by a tier letter: F full, A abstract,
M method, S skip. Tokens are separated by spaces or commas, for example
"1F 3A 4S". The single reply SHOW ALL lists the snapshot instead of
deciding anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		text := strings.Join(args, " ")
		if replyFromStdin {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(raw)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("empty reply: pass tokens as arguments or use --stdin")
		}

		snapshotID := replySnapshotID
		if replyDigestFile != "" {
			if snapshotID != "" {
				return fmt.Errorf("--snapshot and --digest are mutually exclusive")
			}
			d, err := digest.ParseFile(replyDigestFile)
			if err != nil {
				return err
			}
			snapshotID = d.SnapshotID
		}

		engine, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		out, err := engine.Reply(cmd.Context(), text, snapshotID)
		if err != nil {
			return err
		}

		if out.ShowAll {
			_, snap, err := engine.ParseReply(text, snapshotID)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		}
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replyCmd)
	replyCmd.Flags().StringVar(&replySnapshotID, "snapshot", "", "snapshot ID the reply answers (default: latest)")
	replyCmd.Flags().StringVar(&replyDigestFile, "digest", "", "outbox digest file the reply answers; its snapshot_id is used")
	replyCmd.Flags().BoolVar(&replyFromStdin, "stdin", false, "read the reply body from stdin")
}

func printOutcome(w io.Writer, out reply.Outcome) {
	for _, a := range out.Applied {
		fmt.Fprintf(w, "applied %s: %s -> %s\n", a.Token, a.Record.Title, a.Record.Tier)
	}
	for _, r := range out.Rejected {
		if r.Detail != "" {
			fmt.Fprintf(w, "rejected %q: %s (%s)\n", r.Token, r.Reason, r.Detail)
		} else {
			fmt.Fprintf(w, "rejected %q: %s\n", r.Token, r.Reason)
		}
	}
	fmt.Fprintf(w, "%d applied, %d rejected.\n", len(out.Applied), len(out.Rejected))
}

func printSnapshot(w io.Writer, snap *store.Snapshot) {
	if snap == nil {
		fmt.Fprintln(w, "No snapshot yet.")
		return
	}
	fmt.Fprintf(w, "Snapshot %s (%s, %d items):\n", snap.ID, snap.CreatedAt.Format("2006-01-02 15:04"), snap.Size())
	for _, e := range snap.Entries {
		c := e.Candidate
		fmt.Fprintf(w, "%3d. %s (score %d, first seen %s)\n", e.Ordinal, c.Title, c.Score, c.FirstSeen)
	}
}

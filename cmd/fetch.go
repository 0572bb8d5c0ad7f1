package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"journalclub/internal/model"
	"journalclub/internal/pipeline"
)

var fetchInputFile string

// fetchCmd runs one fetch pass: pull feeds, drop decided articles, rank
// the rest and publish a digest snapshot.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one fetch pass and publish a digest",
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

		var report pipeline.FetchReport
		if fetchInputFile != "" {
			arts, err := loadArticles(fetchInputFile)
			if err != nil {
				return err
			}
			report, err = engine.RunFetchArticles(cmd.Context(), arts)
			if err != nil {
				return err
			}
		} else {
			report, err = engine.RunFetch(cmd.Context())
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d items: %d merged, %d already decided, %d new candidates.\n",
			report.Fetched, report.Merged, report.Known, report.Candidates)
		if report.Snapshot == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No digest this pass.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Digest: %s (snapshot %s, %d items)\n",
			report.DigestPath, report.Snapshot.ID, len(report.Snapshot.Items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchInputFile, "input", "i", "", "optional path to a JSON file of articles to use instead of fetching feeds")
}

// loadArticles reads a JSON array of articles, the same shape the feed
// fetcher produces. Useful for replaying exported batches.
func loadArticles(path string) ([]model.Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	var arts []model.Article
	if err := json.Unmarshal(raw, &arts); err != nil {
		return nil, fmt.Errorf("parse articles: %w", err)
	}
	return arts, nil
}

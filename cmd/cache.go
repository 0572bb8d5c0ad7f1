package cmd

import "github.com/spf13/cobra"

// cacheCmd groups metadata-cache subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Metadata cache utilities",
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

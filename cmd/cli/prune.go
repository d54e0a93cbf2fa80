package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = dbCommand(&cobra.Command{
	Use:   "prune",
	Short: "Delete old statistics rows and stored feed files",
	Long: `Apply the retention limits once: statistics older than
retention.statistics_days are deleted and only the newest retention.keep_feeds
feed files are kept per competitor.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := wired.Retention.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d statistics rows and %d feed files\n", res.Statistics, res.Feeds)
		return nil
	},
})

func init() {
	rootCmd.AddCommand(pruneCmd)
}

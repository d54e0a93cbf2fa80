package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = dbCommand(&cobra.Command{
	Use:   "migrate",
	Short: "Create the tables and seed the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wired.Migrate(cmd.Context()); err != nil {
			return err
		}
		logger.Info().Msg("Schema up to date")
		return nil
	},
})

func init() {
	rootCmd.AddCommand(migrateCmd)
}

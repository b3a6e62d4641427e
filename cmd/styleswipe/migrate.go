package main

import (
	"github.com/spf13/cobra"

	"github.com/tair/styleswipe/db/migrations"
	"github.com/tair/styleswipe/pkg/database"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := database.Up
			if len(args) == 1 {
				dir = database.Direction(args[0])
			}
			return database.Migrate(c.databaseConfig(), migrations.FS, dir)
		},
	}
}

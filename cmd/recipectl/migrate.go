package main

import (
	"github.com/spf13/cobra"

	"github.com/padraicbc/recipeapi/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, dir := range []db.Direction{db.Up, db.Down, db.Status} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: migrateShort[dir],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return db.Migrate(cmd.Context(), a.db, a.cfg.DBDriver, dir, a.log)
			},
		})
	}
	return cmd
}

var migrateShort = map[db.Direction]string{
	db.Up:     "Apply all pending migrations",
	db.Down:   "Roll back the most recent migration",
	db.Status: "Print the state of every migration",
}

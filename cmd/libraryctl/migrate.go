package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Astemirdum/library-lending/library/migrations"
	"github.com/Astemirdum/library-lending/pkg/postgres"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := root.setup()
			defer log.Sync() //nolint:errcheck

			pool, err := postgres.NewPostgresDB(cmd.Context(), &cfg.Database, nil)
			if err != nil {
				return errors.Wrap(err, "db init")
			}
			defer pool.Close()

			switch args[0] {
			case "up":
				err = postgres.Migrate(pool, migrations.MigrationFiles)
			case "down":
				err = postgres.MigrateDown(pool, migrations.MigrationFiles)
			}
			if err != nil {
				return err
			}
			log.Info("migrate " + args[0] + " done")
			return nil
		},
	}
	return cmd
}

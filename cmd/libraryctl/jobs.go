package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Astemirdum/library-lending/library/app"
)

func newJobsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "jobs " + strings.Join(app.Jobs, "|"),
		Short:     "Run a notification job once, under the same lock as the scheduler",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: app.Jobs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := root.setup()
			defer log.Sync() //nolint:errcheck

			return app.RunJob(cmd.Context(), &cfg, log, args[0])
		},
	}
}

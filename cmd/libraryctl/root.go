package main

import (
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/pkg/logger"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Administrative tasks for the library lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return errors.Wrap(err, "load .env")
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(
		newCreateAdminCmd(opts),
		newMigrateCmd(opts),
		newJobsCmd(opts),
	)
	return cmd
}

func (o *rootOptions) setup() (config.Config, *zap.Logger) {
	var ops []config.Option
	if o.verbose {
		ops = append(ops, config.WithLogLevel(zapcore.DebugLevel))
	}
	cfg := config.NewConfig(ops...)
	return cfg, logger.NewLogger(cfg.Log, "libraryctl")
}

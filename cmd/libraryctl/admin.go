package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Astemirdum/library-lending/library/app"
)

func newCreateAdminCmd(root *rootOptions) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account or promote an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := root.setup()
			defer log.Sync() //nolint:errcheck

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			comps, err := app.Build(cmd.Context(), &cfg, log)
			if err != nil {
				return err
			}
			defer comps.Close()

			u, err := comps.Service.CreateAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			log.Info("admin ready", zap.Int64("id", u.ID), zap.String("email", u.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword prompts on a terminal. An empty answer keeps the password
// of an existing user.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password prompt needs a terminal")
	}
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return strings.TrimSpace(string(b)), nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chibyk-cyber/pro-shop/internal/app"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the users, orders and catalog migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			db, err := app.ConnectPostgres(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			repo, c, err := app.OpenCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied, catalog has %d products\n", c.Len())
			return nil
		},
	}
}

package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/chibyk-cyber/pro-shop/internal/app"
	"github.com/chibyk-cyber/pro-shop/internal/auth/domain"
	"github.com/chibyk-cyber/pro-shop/internal/session"
)

// verifyCmd re-runs payment verification for a reference on behalf of a
// customer, for example when the provider redirect never reached the shop.
func verifyCmd() *cobra.Command {
	var userID, email string

	cmd := &cobra.Command{
		Use:   "verify <reference>",
		Short: "Verify a transaction with the payment provider and record the order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			sess := &session.Session{
				UserID:    userID,
				Email:     email,
				Role:      domain.RoleCustomer,
				CreatedAt: time.Now(),
			}
			resp, err := a.Checkout.Verify(ctx, sess, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "ID of the customer who paid")
	cmd.Flags().StringVar(&email, "email", "", "email of the customer who paid, needed when the transaction carries no user id")

	return cmd
}

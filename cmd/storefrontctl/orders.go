package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chibyk-cyber/pro-shop/internal/app"
	"github.com/chibyk-cyber/pro-shop/internal/orders/domain"
	"github.com/chibyk-cyber/pro-shop/internal/orders/repository"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect recorded orders",
	}
	cmd.AddCommand(ordersListCmd())
	cmd.AddCommand(ordersSalesCmd())
	return cmd
}

func ordersListCmd() *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders of one customer, or of everyone with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if userID == "" && !all {
				return errors.New("either --user or --all is required")
			}
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
			repo := repository.NewRepository(db)

			var orders []*domain.Order
			if all {
				orders, err = repo.ListAllOrders(ctx, limit, 0)
			} else {
				orders, err = repo.ListOrdersByUserID(ctx, userID)
			}
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "customer ID")
	cmd.Flags().Bool("all", false, "list orders of every customer")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum orders with --all")

	return cmd
}

func ordersSalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sales",
		Short: "Show order count and amount per status",
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

			totals, err := repository.NewRepository(db).SalesSummary(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tCOUNT\tAMOUNT")
			for _, t := range totals {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", t.Status, t.Count, t.Amount)
			}
			return tw.Flush()
		},
	}
}

func printOrders(w io.Writer, orders []*domain.Order) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REFERENCE\tUSER\tSTATUS\tAMOUNT\tCURRENCY\tPAID AT\tCREATED AT")
	for _, o := range orders {
		paidAt := "-"
		if o.PaidAt != nil {
			paidAt = o.PaidAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			o.Reference, o.UserID, o.Status, o.Amount, o.Currency, paidAt, o.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			order, err := app.Flow.Checkout(cmd.Context())
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "order %d placed, total %s, status %s", order.ID, money(order.Total), order.Status)
			return nil
		},
	}
}

func newOrdersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List past orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			orders, err := app.API.Orders(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tTOTAL\tITEMS")
			for _, o := range orders {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n",
					o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Status, money(o.Total), len(o.Items))
			}
			return w.Flush()
		},
	}
}

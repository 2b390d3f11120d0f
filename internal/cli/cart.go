package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCartCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the cart",
	}
	cmd.AddCommand(
		newCartShowCommand(opts),
		newCartAddCommand(opts),
		newCartQtyCommand(opts),
		newCartRemoveCommand(opts),
		newCartClearCommand(opts),
	)
	return cmd
}

func newCartShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			lines := app.Cart.Lines()
			if len(lines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cart is empty")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "restaurant %d\n", app.Cart.RestaurantID())
			w := table(out)
			fmt.Fprintln(w, "ID\tITEM\tQTY\tUNIT\tSUBTOTAL")
			for _, l := range lines {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					l.Item.ID, l.Item.Name, l.Quantity,
					money(l.Item.DiscountedCost),
					money(l.Item.DiscountedCost*float64(l.Quantity)))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if promos := app.Cart.Promos(); len(promos) > 0 {
				fmt.Fprintf(out, "promos: %v\n", promos)
			}
			fmt.Fprintf(out, "total: %s (%d items)\n", money(app.Cart.TotalCost()), app.Cart.TotalItems())
			return nil
		},
	}
}

func newCartAddCommand(opts *rootOptions) *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <restaurant-id> <item-id>",
		Short: "Add a menu item to the cart",
		Long:  "Add a menu item to the cart. Adding from a different restaurant replaces the current cart.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid restaurant id %q", args[0])
			}
			itemID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[1])
			}

			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.API.Menu(cmd.Context(), restaurantID)
			if err != nil {
				return err
			}
			for _, item := range items {
				if item.ID == itemID {
					if restaurantID != app.Cart.RestaurantID() && app.Cart.TotalItems() > 0 {
						warn(cmd.OutOrStdout(), "switching restaurants, previous cart discarded")
					}
					app.Cart.AddOrUpdateItem(cmd.Context(), restaurantID, item, quantity)
					if user := app.Session.User(); user != nil {
						app.Cart.SetOwner(cmd.Context(), user.ID)
					}
					success(cmd.OutOrStdout(), "%d × %s in cart, total %s", app.Cart.ItemQuantity(itemID), item.Name, money(app.Cart.TotalCost()))
					return nil
				}
			}
			return fmt.Errorf("item %d not on restaurant %d's menu", itemID, restaurantID)
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to set")
	return cmd
}

func newCartQtyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <item-id> <quantity>",
		Short: "Change an item's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Cart.UpdateQuantity(cmd.Context(), itemID, quantity)
			success(cmd.OutOrStdout(), "cart total %s (%d items)", money(app.Cart.TotalCost()), app.Cart.TotalItems())
			return nil
		},
	}
}

func newCartRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an item from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Cart.RemoveItem(cmd.Context(), itemID)
			success(cmd.OutOrStdout(), "removed, cart total %s", money(app.Cart.TotalCost()))
			return nil
		},
	}
}

func newCartClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Cart.Clear(cmd.Context())
			success(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}
}

func newPromoCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promo",
		Short: "Apply or remove promo codes",
	}

	add := &cobra.Command{
		Use:   "add <promo-id>",
		Short: "Apply a promo to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			promoID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid promo id %q", args[0])
			}

			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			promo, err := app.Cart.AddPromo(cmd.Context(), promoID, app.Cart.TotalCost())
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "applied %s (%s %s)", promo.Code, money(promo.Discount), promo.DiscountType)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove <promo-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a promo from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			promoID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid promo id %q", args[0])
			}

			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			app.Cart.RemovePromo(cmd.Context(), promoID)
			success(cmd.OutOrStdout(), "promo removed")
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRestaurantsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "List restaurants",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			restaurants, err := app.API.Restaurants(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tCUISINES\tOPEN")
			for _, r := range restaurants {
				open := "yes"
				if !r.Open {
					open = "no"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Name, strings.Join(r.Cuisines, ", "), open)
			}
			return w.Flush()
		},
	}
}

func newMenuCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu <restaurant-id>",
		Short: "Show a restaurant's menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid restaurant id %q", args[0])
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
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tPRICE\tDISCOUNTED")
			for _, item := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", item.ID, item.Name, money(item.Cost), money(item.DiscountedCost))
			}
			return w.Flush()
		},
	}
}

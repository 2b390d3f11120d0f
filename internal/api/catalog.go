package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Restaurants lists the browsable restaurants.
func (c *Client) Restaurants(ctx context.Context) ([]Restaurant, error) {
	var out []Restaurant
	if err := c.get(ctx, "/restaurants/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Menu fetches the menu of one restaurant.
func (c *Client) Menu(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	if restaurantID <= 0 {
		return nil, fmt.Errorf("api: restaurant id is required")
	}
	var out []MenuItem
	path := "/restaurants/" + strconv.FormatInt(restaurantID, 10) + "/menu/"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidPromos lists the promos currently applicable to a restaurant for
// the given order total. Implements cart.PromoValidator.
func (c *Client) ValidPromos(ctx context.Context, restaurantID int64, orderTotal float64) ([]Promo, error) {
	if restaurantID <= 0 {
		return nil, fmt.Errorf("api: restaurant id is required")
	}
	query := url.Values{}
	query.Set("order_total", strconv.FormatFloat(orderTotal, 'f', 2, 64))

	var out []Promo
	path := "/restaurants/" + strconv.FormatInt(restaurantID, 10) + "/promos/?" + query.Encode()
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

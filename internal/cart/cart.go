// Package cart owns the shopping cart: its single-restaurant binding, line
// items, promo codes, and persistence. In-memory state is authoritative
// and immediately observable; durability is best-effort after every
// mutation.
package cart

import (
	"errors"

	"github.com/mealdash/client-go/internal/api"
)

var (
	// ErrNoRestaurant is returned when a promo is added before any item has
	// bound the cart to a restaurant.
	ErrNoRestaurant = errors.New("cart: no restaurant selected")
	// ErrInvalidPromo is returned when a promo is not among the valid promos
	// for the bound restaurant and order total.
	ErrInvalidPromo = errors.New("cart: invalid promo")
)

// Line is one cart entry: an item snapshot and its quantity. Quantity is
// always positive; an entry that would reach zero is removed instead.
type Line struct {
	Item     api.MenuItem `json:"item"`
	Quantity int          `json:"quantity"`
}

// snapshot is the persisted JSON shape of the cart.
type snapshot struct {
	RestaurantID int64          `json:"restaurant_id"`
	Items        map[int64]Line `json:"items"`
	Promos       []int64        `json:"promos"`
	OwnerID      int64          `json:"owner_id"`
}

// Package auth coordinates login, registration, logout, and checkout
// across the session store, the cart manager, and the remote API. It also
// owns the reactive rule that losing the user, by any path, clears the
// local state the user owned.
package auth

import (
	"context"
	"fmt"

	"github.com/mealdash/client-go/internal/api"
	"github.com/mealdash/client-go/internal/cart"
	"github.com/mealdash/client-go/internal/logging"
	"github.com/mealdash/client-go/internal/session"
)

// Flow wires the auth operations together.
type Flow struct {
	api  *api.Client
	sess *session.Store
	cart *cart.Manager
	log  *logging.Logger
}

// NewFlow creates the flow and registers the user-cleared handler: any
// transition of the session user from non-nil to nil (logout, refresh
// exhaustion) resets the in-memory cart. The session clear itself already
// removed the persisted keys, cart snapshot included.
func NewFlow(apiClient *api.Client, sess *session.Store, cartManager *cart.Manager, log *logging.Logger) *Flow {
	if log == nil {
		log = logging.Nop()
	}
	f := &Flow{
		api:  apiClient,
		sess: sess,
		cart: cartManager,
		log:  log,
	}
	sess.OnUserCleared(func() {
		f.log.Info("user cleared, resetting cart")
		f.cart.Reset()
	})
	return f
}

// Login exchanges credentials for tokens, persists them, then fetches and
// stores the user profile. The profile fetch runs through the pipeline, so
// a stale access token gets one refresh-and-retry before failing.
func (f *Flow) Login(ctx context.Context, identifier, password string) (*session.User, error) {
	pair, err := f.api.Token(ctx, identifier, password)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	f.sess.SetTokens(ctx, pair.Access, pair.Refresh)

	user, err := f.api.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: fetch profile: %w", err)
	}
	f.sess.SetUser(ctx, user)
	return user, nil
}

// Register creates an account and stores its first token pair.
func (f *Flow) Register(ctx context.Context, req api.RegisterRequest) error {
	pair, err := f.api.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("auth: register: %w", err)
	}
	f.sess.SetTokens(ctx, pair.Access, pair.Refresh)
	return nil
}

// Logout notifies the remote service best-effort, then unconditionally
// clears the session; the user-cleared handler resets the cart.
func (f *Flow) Logout(ctx context.Context) {
	if f.sess.AccessToken() != "" {
		if err := f.api.Logout(ctx); err != nil {
			f.log.WithError(err).Warn("remote logout failed, clearing local state anyway")
		}
	}
	f.sess.Clear(ctx)
}

// Checkout places an order from the current cart and clears the cart on
// success.
func (f *Flow) Checkout(ctx context.Context) (*api.Order, error) {
	lines := f.cart.Lines()
	if len(lines) == 0 {
		return nil, fmt.Errorf("auth: checkout: cart is empty")
	}

	req := api.CheckoutRequest{
		RestaurantID: f.cart.RestaurantID(),
		Promos:       f.cart.Promos(),
	}
	for _, line := range lines {
		req.Items = append(req.Items, api.OrderItem{
			ItemID:   line.Item.ID,
			Name:     line.Item.Name,
			Quantity: line.Quantity,
			UnitCost: line.Item.DiscountedCost,
		})
	}

	order, err := f.api.PlaceOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("auth: checkout: %w", err)
	}
	f.cart.Clear(ctx)
	return order, nil
}

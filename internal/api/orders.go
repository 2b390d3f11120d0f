package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PlaceOrder submits a checkout request. A fresh idempotency key is
// attached when the caller did not set one.
func (c *Client) PlaceOrder(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.RestaurantID <= 0 {
		return nil, fmt.Errorf("api: restaurant id is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("api: order has no items")
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	var out Order
	if err := c.post(ctx, "/orders/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders lists the authenticated user's past orders, newest first.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.get(ctx, "/orders/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

package api

import "time"

// TokenPair is what the token and register endpoints return.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest carries the fields of POST /register/.
type RegisterRequest struct {
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	TypeOfUser string `json:"typeOfUser"`
}

// Restaurant is a browsable restaurant summary.
type Restaurant struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	ImageURL string   `json:"image_url,omitempty"`
	Cuisines []string `json:"cuisines,omitempty"`
	Open     bool     `json:"is_open"`
}

// MenuItem is one orderable item on a restaurant menu. DiscountedCost is
// the price actually charged; Cost is the list price shown struck through.
type MenuItem struct {
	ID               int64   `json:"id"`
	RestaurantID     int64   `json:"restaurant_id"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"short_description,omitempty"`
	ImageURL         string  `json:"image_url,omitempty"`
	Cost             float64 `json:"cost"`
	DiscountedCost   float64 `json:"discounted_cost"`
}

// Promo is a discount code valid for one restaurant above a minimum order
// total.
type Promo struct {
	ID           int64   `json:"id"`
	Code         string  `json:"code,omitempty"`
	Discount     float64 `json:"discount"`
	DiscountType string  `json:"discount_type"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

// Order is a placed order as returned by the order endpoints.
type Order struct {
	ID           int64       `json:"id"`
	RestaurantID int64       `json:"restaurant_id"`
	Status       string      `json:"status"`
	Total        float64     `json:"total"`
	Items        []OrderItem `json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
}

// CheckoutRequest carries the cart contents to POST /orders/. The
// idempotency key lets the server drop a duplicate submission when the
// client replays after a lost response.
type CheckoutRequest struct {
	RestaurantID   int64       `json:"restaurant_id"`
	Items          []OrderItem `json:"items"`
	Promos         []int64     `json:"promos,omitempty"`
	IdempotencyKey string      `json:"idempotency_key"`
}

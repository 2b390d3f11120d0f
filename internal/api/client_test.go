package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainDoer runs authenticated requests without any refresh behavior, which
// keeps these tests focused on the API surface itself.
type plainDoer struct {
	base string
}

func (d *plainDoer) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var req *http.Request
	var err error
	if body != nil {
		raw, merr := json.Marshal(body)
		if merr != nil {
			return nil, merr
		}
		req, err = http.NewRequestWithContext(ctx, method, d.base+path, bytes.NewReader(raw))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, d.base+path, nil)
	}
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Pipeline: &plainDoer{base: srv.URL}})
	require.NoError(t, err)
	return c
}

func TestTokenExchange(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/token/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		json.NewDecoder(req.Body).Decode(&body)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "pw", body["password"])
		json.NewEncoder(w).Encode(TokenPair{Access: "a1", Refresh: "r1"})
	}).Methods(http.MethodPost)

	c := newTestClient(t, r)
	pair, err := c.Token(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a1", pair.Access)
	assert.Equal(t, "r1", pair.Refresh)
}

func TestTokenMissingFields(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/token/", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access": "a1"})
	}).Methods(http.MethodPost)

	c := newTestClient(t, r)
	_, err := c.Token(context.Background(), "alice", "pw")
	assert.ErrorContains(t, err, "missing tokens")
}

func TestRefreshTokenKeepsOnlyAccess(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/token/refresh/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		json.NewDecoder(req.Body).Decode(&body)
		assert.Equal(t, "r1", body["refresh"])
		json.NewEncoder(w).Encode(map[string]string{"access": "a2"})
	}).Methods(http.MethodPost)

	c := newTestClient(t, r)
	access, err := c.RefreshToken(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "a2", access)
}

func TestRefreshTokenRequiresToken(t *testing.T) {
	c, err := New(Config{BaseURL: "http://unused.example"})
	require.NoError(t, err)
	_, err = c.RefreshToken(context.Background(), "")
	assert.ErrorContains(t, err, "refresh token is required")
}

func TestErrorDetailExtraction(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{"detail field", `{"detail":"token expired"}`, 401, "token expired"},
		{"message field", `{"message":"too many requests"}`, 429, "too many requests"},
		{"plain text", `service unavailable`, 503, "service unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))

			_, err := c.Me(context.Background())
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.detail, apiErr.Detail)
		})
	}
}

func TestCatalogPaths(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/restaurants/", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]Restaurant{{ID: 7, Name: "Villa Carmen"}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/restaurants/{id}/menu/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "7", mux.Vars(req)["id"])
		json.NewEncoder(w).Encode([]MenuItem{{ID: 1, Name: "paella", Cost: 14, DiscountedCost: 12}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/restaurants/{id}/promos/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "25.00", req.URL.Query().Get("order_total"))
		json.NewEncoder(w).Encode([]Promo{{ID: 5, Discount: 10, DiscountType: "percent"}})
	}).Methods(http.MethodGet)

	c := newTestClient(t, r)
	ctx := context.Background()

	restaurants, err := c.Restaurants(ctx)
	require.NoError(t, err)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Villa Carmen", restaurants[0].Name)

	menu, err := c.Menu(ctx, 7)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, 12.0, menu[0].DiscountedCost)

	promos, err := c.ValidPromos(ctx, 7, 25)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, int64(5), promos[0].ID)
}

func TestPlaceOrderGeneratesIdempotencyKey(t *testing.T) {
	var got CheckoutRequest
	r := mux.NewRouter()
	r.HandleFunc("/orders/", func(w http.ResponseWriter, req *http.Request) {
		json.NewDecoder(req.Body).Decode(&got)
		json.NewEncoder(w).Encode(Order{ID: 101, Status: "placed"})
	}).Methods(http.MethodPost)

	c := newTestClient(t, r)
	order, err := c.PlaceOrder(context.Background(), CheckoutRequest{
		RestaurantID: 7,
		Items:        []OrderItem{{ItemID: 1, Quantity: 2, UnitCost: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), order.ID)
	assert.NotEmpty(t, got.IdempotencyKey, "a key must be generated when the caller sets none")
}

func TestPlaceOrderValidation(t *testing.T) {
	c, err := New(Config{BaseURL: "http://unused.example"})
	require.NoError(t, err)

	_, err = c.PlaceOrder(context.Background(), CheckoutRequest{RestaurantID: 7})
	assert.ErrorContains(t, err, "no items")

	_, err = c.PlaceOrder(context.Background(), CheckoutRequest{
		Items: []OrderItem{{ItemID: 1, Quantity: 1}},
	})
	assert.ErrorContains(t, err, "restaurant id is required")
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mealdash/client-go/internal/session"
)

// Token exchanges credentials for a token pair.
func (c *Client) Token(ctx context.Context, username, password string) (TokenPair, error) {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.doRaw(ctx, http.MethodPost, "/token/", body)
	if err != nil {
		return TokenPair{}, err
	}
	var pair TokenPair
	if err := decodeResponse(resp, &pair); err != nil {
		return TokenPair{}, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return TokenPair{}, fmt.Errorf("api: token response missing tokens")
	}
	return pair, nil
}

// RefreshToken exchanges a refresh token for a new access token. The
// service does not rotate refresh tokens: the response carries only the
// access token and the stored refresh token stays valid.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", fmt.Errorf("api: refresh token is required")
	}

	resp, err := c.doRaw(ctx, http.MethodPost, "/token/refresh/", map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := decodeResponse(resp, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", fmt.Errorf("api: refresh response missing access token")
	}
	return out.Access, nil
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (TokenPair, error) {
	resp, err := c.doRaw(ctx, http.MethodPost, "/register/", req)
	if err != nil {
		return TokenPair{}, err
	}
	var pair TokenPair
	if err := decodeResponse(resp, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := c.get(ctx, "/me/", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout notifies the service that the bearer token's session is over.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/token/logout/", nil, nil)
}

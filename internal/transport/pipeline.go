// Package transport implements the authenticated request pipeline: every
// outbound API call is decorated with the current access token and
// transparently recovers from an expired access token with a single-flight
// refresh. Callers never handle the refresh themselves.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mealdash/client-go/internal/logging"
)

const defaultTimeout = 15 * time.Second

// TokenSource provides the tokens attached to outbound requests. It is
// implemented by session.Store; the pipeline clears it when the refresh
// path is exhausted.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	Clear(ctx context.Context)
}

// RefreshFunc exchanges the stored refresh token for a new access token,
// stores it, and returns it. Exactly one call is in flight per failure
// episode.
type RefreshFunc func(ctx context.Context) (string, error)

// Config configures a Pipeline.
type Config struct {
	// BaseURL prefixes every request path.
	BaseURL string
	// Tokens supplies and clears session tokens.
	Tokens TokenSource
	// Refresh is the refresh primitive, typically api.Client.RefreshAccessToken
	// wired through the auth flow.
	Refresh RefreshFunc
	// HTTPClient executes requests. When nil a client with a fixed
	// conservative timeout is used.
	HTTPClient *http.Client
	// ExpiryLeeway enables proactive refresh: an access token whose JWT exp
	// claim falls within the window is refreshed before the request is sent.
	// Zero disables the check.
	ExpiryLeeway time.Duration
	// Limiter optionally throttles outbound requests.
	Limiter *rate.Limiter
	Logger  *logging.Logger
	Metrics *Metrics
}

// refreshResult is what parked continuations receive when a refresh
// episode settles.
type refreshResult struct {
	access string
	err    error
}

// Pipeline is the authenticated HTTP client. Its refresh state machine has
// two states, idle and refreshing; concurrent requests that hit an
// authorization failure while a refresh is in flight park on a channel and
// are all released together when the refresh settles.
type Pipeline struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	refresh RefreshFunc
	leeway  time.Duration
	limiter *rate.Limiter
	log     *logging.Logger
	metrics *Metrics

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

// SetRefresh installs the refresh primitive. The auth flow calls this once
// during wiring, after the API client (which needs the pipeline) exists.
func (p *Pipeline) SetRefresh(fn RefreshFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh = fn
}

func (p *Pipeline) refreshFunc() RefreshFunc {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refresh
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("transport: BaseURL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("transport: Tokens is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &Pipeline{
		baseURL: baseURL,
		client:  client,
		tokens:  cfg.Tokens,
		refresh: cfg.Refresh,
		leeway:  cfg.ExpiryLeeway,
		limiter: cfg.Limiter,
		log:     log,
		metrics: cfg.Metrics,
	}, nil
}

// Do executes an authenticated JSON request against path. body is
// marshaled when non-nil. A single authorization failure triggers one
// refresh-and-replay; a request that fails authorization twice is never
// retried again.
func (p *Pipeline) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("transport: marshal request body: %w", err)
		}
		payload = raw
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("transport: rate limit wait: %w", err)
		}
	}

	token := p.tokens.AccessToken()
	if expiresWithin(token, p.leeway, time.Now()) {
		// Refresh before sending rather than burning a round trip on a
		// guaranteed 401. A failed refresh clears the session here too,
		// same as the reactive path; the request still goes out with the
		// token it already had.
		if res := p.runRefresh(ctx); res.err == nil {
			token = res.access
		}
	}

	resp, err := p.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Authorization failure on a request not yet retried. Capture the
	// original error body before joining (or starting) the refresh episode.
	originalBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	res := p.runRefresh(ctx)
	if res.err != nil {
		// Refresh exhaustion: the session has been cleared; every caller of
		// this episode receives its own original authorization failure.
		p.log.WithError(res.err).Warn("token refresh exhausted, surfacing original authorization failure")
		return nil, &AuthError{
			StatusCode: http.StatusUnauthorized,
			Body:       strings.TrimSpace(string(originalBody)),
		}
	}

	retried, err := p.send(ctx, method, path, payload, res.access)
	if err != nil {
		return nil, err
	}
	// Already marked retried: whatever comes back now is final, even a
	// second 401, which prevents a refresh loop when the refreshed token is
	// itself rejected.
	return retried, nil
}

// send issues one request attempt with the given bearer token.
func (p *Pipeline) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("transport: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.RecordRequest(method, "error", time.Since(start))
		return nil, fmt.Errorf("transport: execute request: %w", err)
	}
	p.metrics.RecordRequest(method, strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp, nil
}

// runRefresh coordinates the single-flight refresh. The first caller of an
// episode becomes the leader and issues the refresh; everyone else parks
// until the episode settles and then shares its result.
func (p *Pipeline) runRefresh(ctx context.Context) refreshResult {
	p.mu.Lock()
	if p.refreshing {
		ch := make(chan refreshResult, 1)
		p.waiters = append(p.waiters, ch)
		p.mu.Unlock()
		select {
		case res := <-ch:
			return res
		case <-ctx.Done():
			return refreshResult{err: ctx.Err()}
		}
	}
	p.refreshing = true
	p.mu.Unlock()

	res := p.doRefresh(ctx)

	p.mu.Lock()
	waiters := p.waiters
	p.waiters = nil
	p.refreshing = false
	p.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}
	return res
}

// doRefresh performs the refresh call itself. Any failure is irrecoverable
// for the session: tokens and user are cleared so the app returns to the
// signed-out state.
func (p *Pipeline) doRefresh(ctx context.Context) refreshResult {
	refresh := p.refreshFunc()
	if p.tokens.RefreshToken() == "" || refresh == nil {
		p.metrics.RecordRefresh("failure")
		p.tokens.Clear(ctx)
		return refreshResult{err: ErrNoRefreshToken}
	}

	access, err := refresh(ctx)
	if err != nil {
		p.metrics.RecordRefresh("failure")
		p.log.WithError(err).Warn("token refresh failed, clearing session")
		p.tokens.Clear(ctx)
		return refreshResult{err: err}
	}
	p.metrics.RecordRefresh("success")
	return refreshResult{access: access}
}

// Get performs an authenticated GET.
func (p *Pipeline) Get(ctx context.Context, path string) (*http.Response, error) {
	return p.Do(ctx, http.MethodGet, path, nil)
}

// Post performs an authenticated POST with a JSON body.
func (p *Pipeline) Post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	return p.Do(ctx, http.MethodPost, path, body)
}

// Put performs an authenticated PUT with a JSON body.
func (p *Pipeline) Put(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	return p.Do(ctx, http.MethodPut, path, body)
}

// Delete performs an authenticated DELETE.
func (p *Pipeline) Delete(ctx context.Context, path string) (*http.Response, error) {
	return p.Do(ctx, http.MethodDelete, path, nil)
}

package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/mealdash/client-go/internal/api"
	"github.com/mealdash/client-go/internal/auth"
	"github.com/mealdash/client-go/internal/cart"
	"github.com/mealdash/client-go/internal/config"
	"github.com/mealdash/client-go/internal/kvstore"
	"github.com/mealdash/client-go/internal/logging"
	"github.com/mealdash/client-go/internal/session"
	"github.com/mealdash/client-go/internal/transport"
)

// App is the assembled client core: storage, session, pipeline, API
// client, cart, and auth flow, constructed once per invocation.
type App struct {
	Config   *config.Config
	KV       kvstore.Store
	Session  *session.Store
	Cart     *cart.Manager
	API      *api.Client
	Flow     *auth.Flow
	Pipeline *transport.Pipeline
	Metrics  *prometheus.Registry
}

// NewApp wires the client core from configuration and restores persisted
// state.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logging.SetLevel(cfg.LogLevel)

	kv, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(kv, logging.New("session"))

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	registry := prometheus.NewRegistry()
	pipeline, err := transport.NewPipeline(transport.Config{
		BaseURL:      cfg.BaseURL,
		Tokens:       sess,
		HTTPClient:   &http.Client{Timeout: cfg.RequestTimeout},
		ExpiryLeeway: cfg.TokenLeeway,
		Limiter:      limiter,
		Logger:       logging.New("transport"),
		Metrics:      transport.NewMetrics(registry),
	})
	if err != nil {
		kv.Close()
		return nil, err
	}

	apiClient, err := api.New(api.Config{
		BaseURL:    cfg.BaseURL,
		Pipeline:   pipeline,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
	})
	if err != nil {
		kv.Close()
		return nil, err
	}

	pipeline.SetRefresh(func(ctx context.Context) (string, error) {
		access, err := apiClient.RefreshToken(ctx, sess.RefreshToken())
		if err != nil {
			return "", err
		}
		sess.SetTokens(ctx, access, "")
		return access, nil
	})

	cartManager := cart.NewManager(kv, apiClient, logging.New("cart"))
	flow := auth.NewFlow(apiClient, sess, cartManager, logging.New("auth"))

	sess.Restore(ctx)
	cartManager.Restore(ctx)

	return &App{
		Config:   cfg,
		KV:       kv,
		Session:  sess,
		Cart:     cartManager,
		API:      apiClient,
		Flow:     flow,
		Pipeline: pipeline,
		Metrics:  registry,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.KV.Close()
}

func openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StorageBackend {
	case "memory":
		return kvstore.NewMemoryStore(), nil
	case "file":
		path, err := cfg.ResolveStoragePath()
		if err != nil {
			return nil, err
		}
		return kvstore.NewFileStore(path)
	case "sqlite":
		path, err := cfg.ResolveStoragePath()
		if err != nil {
			return nil, err
		}
		return kvstore.NewSQLiteStore(path)
	case "redis":
		return kvstore.NewRedisStore(cfg.RedisAddr, "mealdash")
	default:
		return nil, fmt.Errorf("cli: unknown storage backend %q", cfg.StorageBackend)
	}
}

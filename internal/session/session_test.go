package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mealdash/client-go/internal/kvstore"
	"github.com/mealdash/client-go/internal/logging"
)

// failingStore always errors, for exercising the restore/clear fallbacks.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("boom")
}
func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("boom")
}
func (failingStore) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	return nil, errors.New("boom")
}
func (failingStore) MultiSet(ctx context.Context, pairs map[string][]byte) error {
	return errors.New("boom")
}
func (failingStore) Remove(ctx context.Context, key string) error { return errors.New("boom") }
func (failingStore) MultiRemove(ctx context.Context, keys []string) error {
	return errors.New("boom")
}
func (failingStore) Close() error { return nil }

func TestRestorePopulatesSession(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()

	user, _ := json.Marshal(User{ID: 7, Username: "alice"})
	kv.Set(ctx, kvstore.KeyAccessToken, []byte("a1"))
	kv.Set(ctx, kvstore.KeyRefreshToken, []byte("r1"))
	kv.Set(ctx, kvstore.KeyUser, user)

	s := NewStore(kv, logging.Nop())
	if s.Initialized() {
		t.Fatal("store should not be initialized before Restore")
	}
	s.Restore(ctx)

	if !s.Initialized() {
		t.Fatal("store should be initialized after Restore")
	}
	if s.AccessToken() != "a1" || s.RefreshToken() != "r1" {
		t.Fatalf("tokens not restored: %q %q", s.AccessToken(), s.RefreshToken())
	}
	u := s.User()
	if u == nil || u.Username != "alice" {
		t.Fatalf("user not restored: %+v", u)
	}
}

func TestRestoreNeverFails(t *testing.T) {
	s := NewStore(failingStore{}, logging.Nop())
	s.Restore(context.Background())

	if !s.Initialized() {
		t.Fatal("store must be initialized even when storage fails")
	}
	if s.AccessToken() != "" || s.User() != nil {
		t.Fatal("session must stay empty when storage fails")
	}
}

func TestSetTokensPartialUpdate(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewStore(kv, logging.Nop())
	s.Restore(ctx)

	s.SetTokens(ctx, "a1", "r1")
	s.SetTokens(ctx, "", "r2")

	if s.AccessToken() != "a1" {
		t.Fatalf("access token should be untouched, got %q", s.AccessToken())
	}
	if s.RefreshToken() != "r2" {
		t.Fatalf("refresh token should be updated, got %q", s.RefreshToken())
	}

	stored, err := kv.Get(ctx, kvstore.KeyAccessToken)
	if err != nil || string(stored) != "a1" {
		t.Fatalf("persisted access token should be untouched: %q, %v", stored, err)
	}
	stored, _ = kv.Get(ctx, kvstore.KeyRefreshToken)
	if string(stored) != "r2" {
		t.Fatalf("persisted refresh token should be updated: %q", stored)
	}
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	s := NewStore(kv, logging.Nop())
	s.Restore(ctx)

	s.SetTokens(ctx, "a1", "r1")
	s.SetUser(ctx, &User{ID: 1, Username: "alice"})
	kv.Set(ctx, kvstore.KeyCart, []byte(`{}`))

	s.Clear(ctx)

	if s.AccessToken() != "" || s.RefreshToken() != "" || s.User() != nil {
		t.Fatal("session not cleared")
	}
	for _, key := range []string{
		kvstore.KeyAccessToken, kvstore.KeyRefreshToken, kvstore.KeyUser, kvstore.KeyCart,
	} {
		if _, err := kv.Get(ctx, key); !errors.Is(err, kvstore.ErrNotFound) {
			t.Fatalf("key %q should be removed, got err %v", key, err)
		}
	}
}

func TestClearWithFailingStorageStillClearsMemory(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingStore{}, logging.Nop())
	s.Restore(ctx)
	s.SetTokens(ctx, "a1", "r1")

	s.Clear(ctx)

	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Fatal("in-memory session must be cleared even when storage removal fails")
	}
}

func TestOnUserClearedFiresExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemoryStore(), logging.Nop())
	s.Restore(ctx)

	fired := 0
	s.OnUserCleared(func() { fired++ })

	s.SetUser(ctx, &User{ID: 1})
	s.Clear(ctx)
	s.Clear(ctx) // second clear has no user transition

	if fired != 1 {
		t.Fatalf("handler should fire exactly once, fired %d times", fired)
	}
}

func TestSetUserNilCountsAsCleared(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvstore.NewMemoryStore(), logging.Nop())
	s.Restore(ctx)

	fired := 0
	s.OnUserCleared(func() { fired++ })

	s.SetUser(ctx, nil) // no transition: user was already nil
	s.SetUser(ctx, &User{ID: 1})
	s.SetUser(ctx, nil)

	if fired != 1 {
		t.Fatalf("handler should fire exactly once, fired %d times", fired)
	}
}

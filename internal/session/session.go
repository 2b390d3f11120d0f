// Package session owns the in-memory authentication state (tokens + user)
// and its persistence. The Store is constructed once per process and passed
// by reference to every collaborator; after Restore the in-memory state is
// authoritative and storage failures only degrade the next cold start.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mealdash/client-go/internal/kvstore"
	"github.com/mealdash/client-go/internal/logging"
)

// User is the authenticated user's profile as returned by the remote
// service.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	TypeOfUser string `json:"type_of_user"`
}

// Store holds the session and persists it through a kvstore.Store.
type Store struct {
	mu          sync.Mutex
	kv          kvstore.Store
	log         *logging.Logger
	access      string
	refresh     string
	user        *User
	initialized bool
	onCleared   []func()
}

// NewStore creates an empty, uninitialized session store.
func NewStore(kv kvstore.Store, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{kv: kv, log: log}
}

// Restore loads tokens and the user record from storage. It never fails
// the caller: on any storage error the session is left empty and the store
// is still marked initialized.
func (s *Store) Restore(ctx context.Context) {
	values, err := s.kv.MultiGet(ctx, []string{
		kvstore.KeyAccessToken,
		kvstore.KeyRefreshToken,
		kvstore.KeyUser,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true

	if err != nil {
		s.log.WithError(err).Warn("session restore failed, starting empty")
		return
	}

	if len(values[0]) > 0 {
		s.access = string(values[0])
	}
	if len(values[1]) > 0 {
		s.refresh = string(values[1])
	}
	if len(values[2]) > 0 {
		var u User
		if err := json.Unmarshal(values[2], &u); err != nil {
			s.log.WithError(err).Warn("stored user record is corrupt, dropping it")
		} else {
			s.user = &u
		}
	}
}

// SetTokens updates the session tokens. An empty value leaves the
// corresponding token untouched, both in memory and in storage, so a
// refresh that returns only a new access token keeps the refresh token.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) {
	pairs := make(map[string][]byte, 2)

	s.mu.Lock()
	if access != "" {
		s.access = access
		pairs[kvstore.KeyAccessToken] = []byte(access)
	}
	if refresh != "" {
		s.refresh = refresh
		pairs[kvstore.KeyRefreshToken] = []byte(refresh)
	}
	s.mu.Unlock()

	if len(pairs) == 0 {
		return
	}
	if err := s.kv.MultiSet(ctx, pairs); err != nil {
		s.log.WithError(err).Warn("failed to persist tokens")
	}
}

// SetUser updates the session user and persists it when non-nil. Setting a
// nil user counts as a user-cleared transition.
func (s *Store) SetUser(ctx context.Context, u *User) {
	s.mu.Lock()
	had := s.user != nil
	s.user = u
	s.mu.Unlock()

	if u == nil {
		if had {
			s.notifyCleared()
		}
		return
	}

	raw, err := json.Marshal(u)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode user record")
		return
	}
	if err := s.kv.Set(ctx, kvstore.KeyUser, raw); err != nil {
		s.log.WithError(err).Warn("failed to persist user record")
	}
}

// Clear resets the session to empty. In-memory state is cleared first so
// no caller can read stale tokens as valid; removal of persisted keys is
// best-effort cleanup afterwards. Registered handlers fire exactly once
// per non-nil-to-nil user transition.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	had := s.user != nil
	s.access = ""
	s.refresh = ""
	s.user = nil
	s.mu.Unlock()

	err := s.kv.MultiRemove(ctx, []string{
		kvstore.KeyAccessToken,
		kvstore.KeyRefreshToken,
		kvstore.KeyUser,
		kvstore.KeyCart,
	})
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		s.log.WithError(err).Warn("failed to remove persisted session keys")
	}

	if had {
		s.notifyCleared()
	}
}

// OnUserCleared registers a handler invoked whenever the user transitions
// from non-nil to nil, by any path. Handlers run synchronously, outside the
// store's lock.
func (s *Store) OnUserCleared(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCleared = append(s.onCleared, fn)
}

func (s *Store) notifyCleared() {
	s.mu.Lock()
	handlers := make([]func(), len(s.onCleared))
	copy(handlers, s.onCleared)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// AccessToken returns the current access token, or "" when absent.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshToken returns the current refresh token, or "" when absent.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// User returns a copy of the current user, or nil when signed out.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Initialized reports whether Restore has completed.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

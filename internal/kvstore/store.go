// Package kvstore provides the durable key-value storage used for tokens
// and the cart snapshot, with pluggable backends.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the durable key-value store contract. Values are opaque bytes;
// callers that need structure encode JSON before storing.
//
// MultiGet is positional: the result has one entry per requested key, with
// nil for keys that are absent. All operations may fail; callers are
// expected to log storage failures and keep their in-memory state
// authoritative.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	MultiGet(ctx context.Context, keys []string) ([][]byte, error)
	MultiSet(ctx context.Context, pairs map[string][]byte) error
	Remove(ctx context.Context, key string) error
	MultiRemove(ctx context.Context, keys []string) error
	Close() error
}

// Package metadata is a small key/value store kept in the local SQLite state
// database. The credential store and the cookie jar persist through it.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a key
// that does not exist.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	// DeleteMany removes all keys atomically.
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Package namecache keeps name to id lookups for topics and categories.
// It is a read-through helper in front of the store; a cache failure only
// costs a store round trip.
package namecache

import (
	"context"
	"strings"
)

// Cache stores ids by key.
type Cache interface {
	// Get returns the cached id and whether it was present.
	Get(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, id int64) error
	Delete(ctx context.Context, key string) error
}

// Key builds the cache key of a named topic or category of a user.
func Key(kind, userID, name string) string {
	return strings.Join([]string{kind, userID, name}, ":")
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (Nop) Set(context.Context, string, int64) error          { return nil }
func (Nop) Delete(context.Context, string) error              { return nil }

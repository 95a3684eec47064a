package namecache

import (
	"context"

	"github.com/marshallshelly/linknova/internal/logger"
)

// LookupFunc resolves a name against the store.
type LookupFunc func(ctx context.Context, userID, name string) (int64, error)

// VerifyFunc reports whether id still names name for the user.
type VerifyFunc func(ctx context.Context, userID string, id int64, name string) (bool, error)

// Resolver reads names through a cache for one kind of record.
type Resolver struct {
	kind   string
	cache  Cache
	lookup LookupFunc
	verify VerifyFunc
	log    *logger.Logger
}

// NewResolver returns a resolver for kind. verify may be nil to trust
// cached ids until they expire.
func NewResolver(kind string, cache Cache, lookup LookupFunc, verify VerifyFunc, log *logger.Logger) *Resolver {
	if cache == nil {
		cache = Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		kind:   kind,
		cache:  cache,
		lookup: lookup,
		verify: verify,
		log:    log.With("component", "namecache", "kind", kind),
	}
}

// Resolve returns the id of name and whether it came from the cache.
func (r *Resolver) Resolve(ctx context.Context, userID, name string) (int64, bool, error) {
	key := Key(r.kind, userID, name)

	id, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn("cache read failed", "key", key, "error", err)
	}
	if ok {
		if r.verify == nil {
			return id, true, nil
		}
		valid, err := r.verify(ctx, userID, id, name)
		if err != nil {
			return 0, false, err
		}
		if valid {
			return id, true, nil
		}
		r.log.Debug("stale cache entry", "key", key, "id", id)
	}

	id, err = r.lookup(ctx, userID, name)
	if err != nil {
		r.drop(ctx, key)
		return 0, false, err
	}
	if err := r.cache.Set(ctx, key, id); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
	return id, false, nil
}

// Invalidate forgets the cached id of name.
func (r *Resolver) Invalidate(ctx context.Context, userID, name string) {
	r.drop(ctx, Key(r.kind, userID, name))
}

func (r *Resolver) drop(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warn("cache delete failed", "key", key, "error", err)
	}
}

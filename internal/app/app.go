// Package app assembles the store, cache and logger from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marshallshelly/linknova/internal/config"
	"github.com/marshallshelly/linknova/internal/linkdb"
	"github.com/marshallshelly/linknova/internal/logger"
	"github.com/marshallshelly/linknova/internal/namecache"
	"github.com/marshallshelly/linknova/pkg/runtime"
)

const cachePrefix = "linknova:"

// App holds the wired collaborators of one process.
type App struct {
	Config     *config.Config
	Log        *logger.Logger
	DB         *runtime.DB
	Store      *linkdb.Store
	Categories *namecache.Resolver
	Topics     *namecache.Resolver

	redis *redis.Client
}

// New connects to the database and builds the store and resolvers.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := runtime.Connect(ctx, cfg.DB())
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Store:  linkdb.New(db, log).WithPageSizes(cfg.Listing.DefaultPageSize, cfg.Listing.MaxPageSize),
	}

	cache, err := a.newCache(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.Categories = namecache.NewResolver(string(linkdb.KindCategory), cache, a.Store.CategoryID, a.verifyCategory, log)
	a.Topics = namecache.NewResolver(string(linkdb.KindTopic), cache, a.Store.TopicID, a.verifyTopic, log)

	log.Debug("app ready", "cache", cfg.Cache.Backend, "database", cfg.Database.Name)
	return a, nil
}

func (a *App) newCache(ctx context.Context) (namecache.Cache, error) {
	switch a.Config.Cache.Backend {
	case "none":
		return namecache.Nop{}, nil
	case "redis":
		client, err := namecache.Dial(ctx, a.Config.Cache.RedisAddr, "")
		if err != nil {
			return nil, err
		}
		a.redis = client
		return namecache.NewRedis(client, cachePrefix, a.Config.Cache.TTL), nil
	default:
		return namecache.NewMemory(a.Config.Cache.Size, a.Config.Cache.TTL), nil
	}
}

func (a *App) verifyCategory(ctx context.Context, userID string, id int64, name string) (bool, error) {
	c, err := a.Store.GetCategoryByID(ctx, userID, id)
	return matches(c != nil && c.Name == name, err)
}

func (a *App) verifyTopic(ctx context.Context, userID string, id int64, name string) (bool, error) {
	t, err := a.Store.GetTopicByID(ctx, userID, id)
	return matches(t != nil && t.Name == name, err)
}

func matches(ok bool, err error) (bool, error) {
	if errors.Is(err, runtime.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Close releases the pool and the cache connection and flushes the logger.
func (a *App) Close() error {
	var err error
	if a.redis != nil {
		if cerr := a.redis.Close(); cerr != nil {
			err = fmt.Errorf("failed to close redis: %w", cerr)
		}
	}
	a.DB.Close()
	a.Log.Sync()
	return err
}

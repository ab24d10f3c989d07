// Package app opens the store and cache selected by the configuration. It is
// shared by the API server and the likesctl tool.
package app

import (
	"context"
	"fmt"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/cache"
	"github.com/mikiasgoitom/likes/internal/infrastructure/config"
	"github.com/mikiasgoitom/likes/internal/infrastructure/database"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/mongodb"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/postgres"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/sqlite"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// Store is a like store that can also record host users.
type Store interface {
	contract.ILikeStore
	UpsertUser(ctx context.Context, u entity.User) error
}

var (
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
	_ Store = (*mongodb.Store)(nil)
)

// Resources holds the opened backends and releases them in reverse order.
type Resources struct {
	Store Store
	// Cache is nil when caching is disabled.
	Cache contract.ICache

	closers []func(ctx context.Context) error
}

// Open connects the configured store and cache. Postgres migrations are
// applied before the store is used. recorder may be nil.
func Open(ctx context.Context, cfg *config.Config, logger usecasecontract.IAppLogger, recorder cache.Recorder) (*Resources, error) {
	r := &Resources{}
	if err := r.openStore(ctx, cfg, logger); err != nil {
		r.Close(ctx)
		return nil, err
	}
	if err := r.openCache(ctx, cfg, recorder); err != nil {
		r.Close(ctx)
		return nil, err
	}
	return r, nil
}

func (r *Resources) openStore(ctx context.Context, cfg *config.Config, logger usecasecontract.IAppLogger) error {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		s, err := sqlite.New(ctx, cfg.SQLiteDSN, cfg.UsersTable)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		r.Store = s
		r.closers = append(r.closers, s.Close)

	case config.StoreDriverPostgres:
		if err := Migrate(cfg.DatabaseURL, logger); err != nil {
			return err
		}
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		s, err := postgres.NewStore(pool, cfg.UsersTable)
		if err != nil {
			pool.Close()
			return fmt.Errorf("opening postgres store: %w", err)
		}
		if err := s.EnsureUsersTable(ctx); err != nil {
			pool.Close()
			return err
		}
		r.Store = s
		r.closers = append(r.closers, s.Close)

	case config.StoreDriverMongoDB:
		client, err := database.NewMongoDBClient(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		r.closers = append(r.closers, func(context.Context) error { return client.Disconnect() })
		s, err := mongodb.NewStore(ctx, client.Client, cfg.MongoDBName, cfg.UsersTable)
		if err != nil {
			return fmt.Errorf("opening mongodb store: %w", err)
		}
		r.Store = s
		r.closers = append(r.closers, s.Close)

	default:
		return fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	logger.Infof("using %s store", cfg.StoreDriver)
	return nil
}

func (r *Resources) openCache(ctx context.Context, cfg *config.Config, recorder cache.Recorder) error {
	var c contract.ICache
	switch cfg.CacheDriver {
	case config.CacheDriverRedis:
		rdb, err := cache.NewRedisFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		r.closers = append(r.closers, func(context.Context) error {
			cache.Close(rdb)
			return nil
		})
		c = cache.NewRedisCache(rdb, cfg.CacheTTL)
	case config.CacheDriverMemory:
		c = cache.NewMemoryCache(cfg.CacheMaxKeys, cfg.CacheTTL)
	case config.CacheDriverNone:
		return nil
	default:
		return fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
	if recorder != nil {
		c = cache.NewInstrumented(c, cfg.CacheDriver, recorder)
	}
	r.Cache = c
	return nil
}

// Migrate applies the pending Postgres migrations.
func Migrate(databaseURL string, logger usecasecontract.IAppLogger) error {
	m, err := database.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warnf("closing migrator: %v", err)
		}
	}()
	return m.Up()
}

// Close releases every opened backend, newest first.
func (r *Resources) Close(ctx context.Context) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i](ctx)
	}
	r.closers = nil
}

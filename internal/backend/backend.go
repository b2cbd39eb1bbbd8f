// Package backend opens the article store selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/amiyamandal-dev/blogapi/internal/config"
	"github.com/amiyamandal-dev/blogapi/internal/repository"
	"github.com/amiyamandal-dev/blogapi/internal/repository/badger"
	"github.com/amiyamandal-dev/blogapi/internal/repository/mongo"
	"github.com/amiyamandal-dev/blogapi/pkg/logger"
)

// Backend bundles a store's connection pool with its out-of-band handles
type Backend struct {
	Driver string
	Pool   *repository.BoundedPool
	Seeder repository.Seeder

	healthCheck func(ctx context.Context) error
	closeDB     func(ctx context.Context) error
}

// Open connects to the configured store. An unreachable MongoDB server is
// not fatal: requests report connectivity errors until it comes back.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Backend, error) {
	log = log.WithComponent("backend")

	switch cfg.Driver {
	case config.DriverMongo:
		db, err := mongo.New(mongo.Options{
			URI:            cfg.URI,
			Database:       cfg.Database,
			Collection:     cfg.Collection,
			PoolSize:       cfg.PoolSize,
			ConnectTimeout: cfg.AcquireTimeout,
		})
		if err != nil {
			return nil, err
		}

		if err := db.HealthCheck(ctx); err != nil {
			log.Warn("MongoDB is not reachable", "uri", cfg.Redacted(), "error", err)
		} else if err := db.EnsureIndexes(ctx); err != nil {
			log.Warn("Failed to ensure article indexes", "error", err)
		} else {
			log.Info("Connected to MongoDB", "uri", cfg.Redacted(), "database", cfg.Database)
		}

		pool, err := mongo.NewPool(db, cfg.PoolSize)
		if err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		return &Backend{
			Driver:      cfg.Driver,
			Pool:        pool,
			Seeder:      mongo.NewArticleSeeder(db),
			healthCheck: db.HealthCheck,
			closeDB:     db.Close,
		}, nil

	case config.DriverBadger:
		db, err := badger.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info("Opened BadgerDB", "path", cfg.Path)

		pool, err := badger.NewPool(db, cfg.PoolSize)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{
			Driver:      cfg.Driver,
			Pool:        pool,
			Seeder:      badger.NewArticleSeeder(db),
			healthCheck: db.HealthCheck,
			closeDB:     func(context.Context) error { return db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// HealthCheck reports whether the store answers
func (b *Backend) HealthCheck(ctx context.Context) error {
	return b.healthCheck(ctx)
}

// Close drains the pool and closes the underlying store
func (b *Backend) Close(ctx context.Context) error {
	return errors.Join(b.Pool.Close(ctx), b.closeDB(ctx))
}

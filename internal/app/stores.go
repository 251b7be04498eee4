// Package app opens the storage backends selected by configuration.
// It is shared by the server and the batch commands.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/config"
	"github.com/kailas-cloud/wisata/internal/db"
	dbRedis "github.com/kailas-cloud/wisata/internal/db/redis"
	destrepo "github.com/kailas-cloud/wisata/internal/repository/destination"
)

// Stores are the opened destination source and the optional lookup cache.
type Stores struct {
	// Destinations is the raw record source, without breaker or cache.
	Destinations destrepo.Reader
	// Pinger checks the destination database.
	Pinger db.Pinger
	// Cache is nil when the lookup cache is disabled.
	Cache db.KVStore
	// Valkey is set for the valkey/redis drivers and allows seeding records.
	Valkey *destrepo.ValkeyRepo

	closers []func()
}

// Close releases every opened connection.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects to the configured database (and cache) and waits for readiness.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	s := &Stores{}
	ready := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	var shared *dbRedis.Store
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := destrepo.OpenPostgres(cfg.Database.DSN, destrepo.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSec) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pg.Close)
		if err := pg.WaitForReady(ctx, ready); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres not ready: %w", err)
		}
		s.Destinations, s.Pinger = pg, pg
	case config.DriverValkey, config.DriverRedis:
		store, err := openRedis(ctx, cfg.Database.Addrs, cfg.Database.Password, ready)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		shared = store
		s.Valkey = destrepo.NewValkey(store, cfg.Storage.KeyPrefix)
		s.Destinations, s.Pinger = s.Valkey, store
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	logger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if !cfg.Cache.Enabled {
		return s, nil
	}
	if shared != nil && len(cfg.Cache.Addrs) == 0 {
		s.Cache = shared
		return s, nil
	}
	cache, err := openRedis(ctx, cfg.Cache.Addrs, cfg.Cache.Password, ready)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}
	s.closers = append(s.closers, cache.Close)
	s.Cache = cache
	logger.Info("Connected to lookup cache", zap.Strings("addrs", cfg.Cache.Addrs))
	return s, nil
}

func openRedis(ctx context.Context, addrs []string, password string, ready time.Duration) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: addrs, Password: password})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, ready); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	return store, nil
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/paintball-league/internal/config"
	"github.com/riskibarqy/paintball-league/internal/domain/account"
	"github.com/riskibarqy/paintball-league/internal/domain/document"
	"github.com/riskibarqy/paintball-league/internal/domain/objectstore"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/mongodb"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/session"
	"github.com/riskibarqy/paintball-league/internal/infrastructure/storage"
	basecache "github.com/riskibarqy/paintball-league/internal/platform/cache"
)

func (a *App) database(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.onClose("postgres", func(context.Context) error { return db.Close() })
	a.logger.Info("postgres connected", "database", config.PostgresDatabaseName(cfg.DBURL))
	return db, nil
}

func (a *App) buildAccountStores(ctx context.Context, cfg config.Config) (account.Repository, account.VerificationRepository, error) {
	if cfg.AccountStoreDriver != config.DriverPostgres {
		return memory.NewAccountRepository(), memory.NewVerificationRepository(), nil
	}

	db, err := a.database(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewAccountRepository(db), postgres.NewVerificationRepository(db), nil
}

func (a *App) buildDocumentStore(ctx context.Context, cfg config.Config) (document.Store, error) {
	switch cfg.DocumentStoreDriver {
	case config.DriverPostgres:
		db, err := a.database(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewDocumentRepository(db), nil
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.onClose("mongodb", client.Disconnect)
		a.logger.Info("mongodb connected", "database", cfg.MongoDatabase)
		return mongodb.NewDocumentStore(client.Database(cfg.MongoDatabase)), nil
	default:
		return memory.NewDocumentStore(memory.SeedDocuments()), nil
	}
}

func buildObjectStore(cfg config.Config) (objectstore.Store, error) {
	if cfg.StorageDriver != config.DriverDisk {
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewDiskStore(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("open disk storage: %w", err)
	}
	return store, nil
}

func (a *App) buildRevocationStore(ctx context.Context, cfg config.Config) (session.RevocationStore, error) {
	if cfg.SessionRevocationDriver != config.DriverRedis {
		return session.NewMemoryRevocationStore(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	a.onClose("redis", func(context.Context) error { return client.Close() })
	return session.NewRedisRevocationStore(client), nil
}

// withCache puts read-through caches in front of the account and document
// stores. The returned url cache is nil when caching is off.
func withCache(cfg config.Config, accounts account.Repository, docs document.Store) (account.Repository, document.Store, *basecache.Store) {
	if !cfg.CacheEnabled {
		return accounts, docs, nil
	}
	return cache.NewAccountRepository(accounts, basecache.NewStore(cfg.CacheTTL)),
		cache.NewDocumentStore(docs, basecache.NewStore(cfg.CacheTTL)),
		basecache.NewStore(cfg.CacheTTL)
}

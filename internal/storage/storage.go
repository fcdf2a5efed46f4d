package storage

import (
	"context"
	"fmt"

	"github.com/tuanvumaihuynh/article-catalogue/internal/config"
	"github.com/tuanvumaihuynh/article-catalogue/internal/repository"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/db"
)

type CleanupFunc func()

// ArticleStore bundles the article repository with the health check of its backend.
type ArticleStore struct {
	Articles repository.ArticleRepository
	Health   db.HealthChecker
}

// OpenArticleStore connects to the backend selected by cfg.Driver.
func OpenArticleStore(ctx context.Context, cfg config.Store) (ArticleStore, CleanupFunc, error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		client, err := db.NewSQLite(ctx, cfg.SQLiteDSN)
		if err != nil {
			return ArticleStore{}, nil, fmt.Errorf("new sqlite: %w", err)
		}

		store := ArticleStore{
			Articles: repository.NewSQLiteArticleRepository(client.DB),
			Health:   client,
		}
		return store, func() { _ = client.Close() }, nil

	case config.StoreDriverPostgres:
		pool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return ArticleStore{}, nil, fmt.Errorf("new pgx pool: %w", err)
		}

		client := db.NewClient(pool)
		store := ArticleStore{
			Articles: repository.NewArticleRepository(client),
			Health:   client,
		}
		return store, pool.Close, nil

	default:
		return ArticleStore{}, nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// Migrate applies the schema migrations of the backend selected by cfg.Driver.
func Migrate(ctx context.Context, cfg config.Store) error {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		client, err := db.NewSQLite(ctx, cfg.SQLiteDSN)
		if err != nil {
			return fmt.Errorf("new sqlite: %w", err)
		}
		defer client.Close()

		return db.MigrateSQLite(ctx, client.DB)

	case config.StoreDriverPostgres:
		pool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("new pgx pool: %w", err)
		}
		defer pool.Close()

		return db.Migrate(ctx, pool)

	default:
		return fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// registers the "sqlite3" database/sql driver
	_ "github.com/mattn/go-sqlite3"
)

var _ HealthChecker = (*SQLiteClient)(nil)

// SQLiteClient is a database/sql handle on a sqlite database.
type SQLiteClient struct {
	*sql.DB
}

// NewSQLite opens the sqlite database described by dsn and checks it is reachable.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteClient, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// sqlite serialises writers; a single connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteClient{sqlDB}, nil
}

func (c *SQLiteClient) IsHealthy(ctx context.Context) (bool, error) {
	if err := c.PingContext(ctx); err != nil {
		return false, fmt.Errorf("ping sqlite: %w", err)
	}
	return true, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"redirect-analytics/internal/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the alias table and the key/value settings table.
// link_id is unique so a duplicate slug fails at write time.
const schema = `
CREATE TABLE IF NOT EXISTS redirect_aliases (
	id           BIGSERIAL PRIMARY KEY,
	partner_name TEXT NOT NULL,
	link_id      TEXT NOT NULL,
	target_url   TEXT NOT NULL,
	note         TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT redirect_aliases_link_id_key UNIQUE (link_id)
);

CREATE INDEX IF NOT EXISTS idx_redirect_aliases_created_at ON redirect_aliases (created_at DESC);

CREATE TABLE IF NOT EXISTS app_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// InitDB initializes the database connection pool
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies the schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// observe starts a query timer; call the returned func when the query is done
func observe(operation string) func() {
	start := time.Now()
	return func() {
		metrics.DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func recordError(operation string) {
	metrics.DatabaseErrorsTotal.WithLabelValues(operation).Inc()
}

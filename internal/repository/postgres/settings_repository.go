package postgres

import (
	"context"
	"fmt"
	"sort"

	"redirect-analytics/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// settingsRepository keeps settings in the app_settings key/value table
type settingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(db *pgxpool.Pool) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

// Load reads the requested keys
func (r *settingsRepository) Load(ctx context.Context, keys []string) (map[string]string, error) {
	defer observe("settings_load")()

	query := `SELECT key, value FROM app_settings WHERE key = ANY($1)`

	rows, err := r.db.Query(ctx, query, keys)
	if err != nil {
		recordError("settings_load")
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return values, nil
}

// Save upserts all values in one transaction
func (r *settingsRepository) Save(ctx context.Context, values map[string]string) error {
	defer observe("settings_save")()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		recordError("settings_save")
		return fmt.Errorf("failed to begin settings transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := tx.Exec(ctx, query, key, values[key]); err != nil {
			recordError("settings_save")
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		recordError("settings_save")
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	return nil
}

package repository

import (
	"context"

	"redirect-analytics/internal/domain"
)

// AliasRepository defines data access for redirect aliases.
// Implementations return domain.ErrAliasNotFound and domain.ErrLinkIDTaken
// so callers never depend on driver errors.
type AliasRepository interface {
	// Create inserts a new alias and fills in its generated ID
	Create(ctx context.Context, alias *domain.Alias) error

	// GetByLinkID retrieves the alias identified by its link id
	GetByLinkID(ctx context.Context, linkID string) (*domain.Alias, error)

	// ExistsLinkID checks if a link id is already taken
	ExistsLinkID(ctx context.Context, linkID string) (bool, error)

	// List returns all aliases, newest first
	List(ctx context.Context) ([]*domain.Alias, error)

	// Delete removes the alias with the given link id
	Delete(ctx context.Context, linkID string) error
}

// SettingsRepository stores process-wide settings as key/value pairs.
type SettingsRepository interface {
	// Load returns the stored values for the given keys; absent keys are omitted
	Load(ctx context.Context, keys []string) (map[string]string, error)

	// Save writes every key/value pair, replacing existing values
	Save(ctx context.Context, values map[string]string) error
}

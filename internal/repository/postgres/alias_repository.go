package postgres

import (
	"context"
	"errors"
	"fmt"

	"redirect-analytics/internal/domain"
	"redirect-analytics/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation
const uniqueViolation = "23505"

// aliasRepository is the PostgreSQL implementation of repository.AliasRepository
type aliasRepository struct {
	db *pgxpool.Pool
}

// NewAliasRepository creates a new PostgreSQL alias repository
func NewAliasRepository(db *pgxpool.Pool) repository.AliasRepository {
	return &aliasRepository{db: db}
}

// Create inserts a new alias into the database
func (r *aliasRepository) Create(ctx context.Context, alias *domain.Alias) error {
	defer observe("alias_create")()

	query := `
		INSERT INTO redirect_aliases (
			partner_name, link_id, target_url, note, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		) RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		alias.PartnerName,
		alias.LinkID,
		alias.TargetURL,
		alias.Note,
		alias.CreatedAt,
	).Scan(&alias.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrLinkIDTaken, alias.LinkID)
		}
		recordError("alias_create")
		return fmt.Errorf("failed to create alias: %w", err)
	}

	return nil
}

// GetByLinkID retrieves an alias by its link id
func (r *aliasRepository) GetByLinkID(ctx context.Context, linkID string) (*domain.Alias, error) {
	defer observe("alias_get")()

	query := `
		SELECT id, partner_name, link_id, target_url, note, created_at
		FROM redirect_aliases
		WHERE link_id = $1
	`

	alias := &domain.Alias{}
	err := r.db.QueryRow(ctx, query, linkID).Scan(
		&alias.ID,
		&alias.PartnerName,
		&alias.LinkID,
		&alias.TargetURL,
		&alias.Note,
		&alias.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAliasNotFound, linkID)
		}
		recordError("alias_get")
		return nil, fmt.Errorf("failed to get alias: %w", err)
	}

	return alias, nil
}

// ExistsLinkID checks if a link id already exists
func (r *aliasRepository) ExistsLinkID(ctx context.Context, linkID string) (bool, error) {
	defer observe("alias_exists")()

	query := `SELECT EXISTS(SELECT 1 FROM redirect_aliases WHERE link_id = $1)`

	var exists bool
	err := r.db.QueryRow(ctx, query, linkID).Scan(&exists)
	if err != nil {
		recordError("alias_exists")
		return false, fmt.Errorf("failed to check link id existence: %w", err)
	}

	return exists, nil
}

// List returns every alias ordered by creation time, newest first
func (r *aliasRepository) List(ctx context.Context) ([]*domain.Alias, error) {
	defer observe("alias_list")()

	query := `
		SELECT id, partner_name, link_id, target_url, note, created_at
		FROM redirect_aliases
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		recordError("alias_list")
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*domain.Alias
	for rows.Next() {
		alias := &domain.Alias{}
		err := rows.Scan(
			&alias.ID,
			&alias.PartnerName,
			&alias.LinkID,
			&alias.TargetURL,
			&alias.Note,
			&alias.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, alias)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aliases: %w", err)
	}

	return aliases, nil
}

// Delete removes an alias by link id
func (r *aliasRepository) Delete(ctx context.Context, linkID string) error {
	defer observe("alias_delete")()

	result, err := r.db.Exec(ctx, `DELETE FROM redirect_aliases WHERE link_id = $1`, linkID)
	if err != nil {
		recordError("alias_delete")
		return fmt.Errorf("failed to delete alias: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAliasNotFound, linkID)
	}

	return nil
}

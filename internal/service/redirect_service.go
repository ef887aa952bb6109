package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"redirect-analytics/internal/domain"
	"redirect-analytics/internal/metrics"
	"redirect-analytics/internal/repository"
	"redirect-analytics/pkg/sanitize"
	"redirect-analytics/pkg/validator"
)

// ErrInvalidInput marks errors caused by the submitted values rather than the store
var ErrInvalidInput = errors.New("invalid input")

// CreateAliasInput holds the raw values of the admin "Add Redirect" form
type CreateAliasInput struct {
	PartnerName string
	TargetURL   string
	LinkID      string
	Note        string
}

// RedirectService resolves aliases and manages them for the admin surface
type RedirectService struct {
	aliasRepo repository.AliasRepository
	logger    *slog.Logger
	baseURL   string // Public base URL used in generated redirect links
}

// NewRedirectService creates a new redirect service
func NewRedirectService(aliasRepo repository.AliasRepository, logger *slog.Logger, baseURL string) *RedirectService {
	return &RedirectService{
		aliasRepo: aliasRepo,
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Resolve returns the alias for linkID. An unknown alias or one without a
// stored target yields domain.ErrAliasNotFound.
func (s *RedirectService) Resolve(ctx context.Context, linkID string) (*domain.Alias, error) {
	if linkID == "" {
		return nil, domain.ErrAliasNotFound
	}

	alias, err := s.aliasRepo.GetByLinkID(ctx, linkID)
	if err != nil {
		if errors.Is(err, domain.ErrAliasNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve alias: %w", err)
	}

	if strings.TrimSpace(alias.TargetURL) == "" {
		return nil, fmt.Errorf("%w: %s has no target", domain.ErrAliasNotFound, linkID)
	}

	return alias, nil
}

// CreateAlias sanitizes the input, stores a new alias and returns it with
// its public redirect link.
func (s *RedirectService) CreateAlias(ctx context.Context, in CreateAliasInput) (*domain.Alias, string, error) {
	targetURL, err := validator.NormalizeURL(in.TargetURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: redirect URL: %w", ErrInvalidInput, err)
	}

	alias := domain.NewAlias(
		sanitize.Text(in.PartnerName),
		targetURL,
		sanitize.Key(in.LinkID),
		sanitize.Text(in.Note),
	)

	if err := alias.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	exists, err := s.aliasRepo.ExistsLinkID(ctx, alias.LinkID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check link id: %w", err)
	}
	if exists {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrLinkIDTaken, alias.LinkID)
	}

	if err := s.aliasRepo.Create(ctx, alias); err != nil {
		return nil, "", fmt.Errorf("failed to create alias: %w", err)
	}

	link, err := alias.RedirectLink(s.baseURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build redirect link: %w", err)
	}

	metrics.RecordAliasCreated()
	s.logger.Info("Alias created",
		"link_id", alias.LinkID,
		"partner", alias.PartnerName,
		"target_url", alias.TargetURL,
	)

	return alias, link, nil
}

// ListAliases returns every alias with its computed redirect link
func (s *RedirectService) ListAliases(ctx context.Context) ([]domain.AliasListing, error) {
	aliases, err := s.aliasRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}

	listings := make([]domain.AliasListing, 0, len(aliases))
	for _, alias := range aliases {
		link, err := alias.RedirectLink(s.baseURL)
		if err != nil {
			// A stored target without a host still lists, just without a link
			s.logger.Warn("Cannot build redirect link", "link_id", alias.LinkID, "error", err)
			link = ""
		}
		listings = append(listings, domain.AliasListing{Alias: *alias, RedirectLink: link})
	}

	return listings, nil
}

// DeleteAlias removes an alias by link id
func (s *RedirectService) DeleteAlias(ctx context.Context, linkID string) error {
	if err := s.aliasRepo.Delete(ctx, linkID); err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}

	metrics.RecordAliasDeleted()
	s.logger.Info("Alias deleted", "link_id", linkID)
	return nil
}

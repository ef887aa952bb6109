package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"redirect-analytics/internal/domain"
	"redirect-analytics/internal/metrics"
	"redirect-analytics/internal/repository"
	"redirect-analytics/pkg/sanitize"
	"redirect-analytics/pkg/validator"
)

// AnalyticsService owns the analytics provider configuration.
// Settings are loaded once at startup, served from memory and replaced on save.
type AnalyticsService struct {
	repo   repository.SettingsRepository
	logger *slog.Logger

	mu      sync.RWMutex
	current domain.AnalyticsSettings
}

// NewAnalyticsService creates a service holding the default (all disabled) settings
func NewAnalyticsService(repo repository.SettingsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:   repo,
		logger: logger,
	}
}

// Load reads the stored settings. Keys that were never saved keep their defaults.
func (s *AnalyticsService) Load(ctx context.Context) error {
	values, err := s.repo.Load(ctx, domain.SettingKeys)
	if err != nil {
		return fmt.Errorf("failed to load analytics settings: %w", err)
	}

	s.set(domain.AnalyticsSettingsFromValues(values))
	return nil
}

// Current returns a copy of the active settings
func (s *AnalyticsService) Current() domain.AnalyticsSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save sanitizes and persists the submitted settings, then makes them active.
// There is no cross-field validation: an enabled provider with empty
// parameters is stored as is and skipped when rendering.
func (s *AnalyticsService) Save(ctx context.Context, in domain.AnalyticsSettings) (domain.AnalyticsSettings, error) {
	settings := domain.AnalyticsSettings{
		GoogleEnabled:    in.GoogleEnabled,
		GoogleTrackingID: sanitize.Text(in.GoogleTrackingID),
		UmamiEnabled:     in.UmamiEnabled,
		UmamiTrackerURL:  s.trackerURL(in.UmamiTrackerURL),
		UmamiWebsiteID:   sanitize.Text(in.UmamiWebsiteID),
		CustomEnabled:    in.CustomEnabled,
		CustomScript:     sanitize.Script(in.CustomScript),
	}

	if err := s.repo.Save(ctx, settings.Values()); err != nil {
		return s.Current(), fmt.Errorf("failed to save analytics settings: %w", err)
	}

	s.set(settings)
	metrics.RecordSettingsSaved()
	s.logger.Info("Analytics settings saved",
		"google", settings.GoogleActive(),
		"umami", settings.UmamiActive(),
		"custom", settings.CustomActive(),
	)

	return settings, nil
}

func (s *AnalyticsService) set(settings domain.AnalyticsSettings) {
	s.mu.Lock()
	s.current = settings
	s.mu.Unlock()

	for _, p := range domain.Providers {
		metrics.SetProviderActive(string(p), settings.Active(p))
	}
}

// trackerURL normalizes the Umami base URL; an unusable value is stored empty
func (s *AnalyticsService) trackerURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	normalized, err := validator.NormalizeURL(raw)
	if err != nil {
		s.logger.Warn("Discarding invalid Umami tracker URL", "value", raw, "error", err)
		return ""
	}

	return strings.TrimRight(normalized, "/")
}

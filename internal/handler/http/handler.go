package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"redirect-analytics/internal/domain"
	"redirect-analytics/internal/metrics"
	"redirect-analytics/internal/render"
	"redirect-analytics/internal/service"
	"redirect-analytics/pkg/logger"
	"redirect-analytics/pkg/sanitize"

	"github.com/go-chi/chi/v5"
)

// RedirectService defines the alias operations needed by the handler
type RedirectService interface {
	Resolve(ctx context.Context, linkID string) (*domain.Alias, error)
	CreateAlias(ctx context.Context, in service.CreateAliasInput) (*domain.Alias, string, error)
	ListAliases(ctx context.Context) ([]domain.AliasListing, error)
	DeleteAlias(ctx context.Context, linkID string) error
}

// AnalyticsService defines the settings operations needed by the handler
type AnalyticsService interface {
	Current() domain.AnalyticsSettings
	Save(ctx context.Context, in domain.AnalyticsSettings) (domain.AnalyticsSettings, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	redirects RedirectService
	analytics AnalyticsService
	logger    *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(redirects RedirectService, analytics AnalyticsService, logger *slog.Logger) *Handler {
	return &Handler{
		redirects: redirects,
		analytics: analytics,
		logger:    logger,
	}
}

// RouteOptions configures the optional parts of the router
type RouteOptions struct {
	AdminUser     string
	AdminPassword string
	// Metrics is mounted at GET /metrics when non-nil
	Metrics http.Handler
	// Ready backs GET /health/ready; nil means always ready
	Ready func(ctx context.Context) error
}

// Routes builds the application router
func (h *Handler) Routes(opts RouteOptions) chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)

	r.Get("/redirect/{partner}/{host}/{linkID}", h.RedirectAlias)

	r.Get("/health/live", h.HealthCheck)
	r.Get("/health/ready", h.ReadinessCheck(opts.Ready))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(BasicAuthMiddleware(opts.AdminUser, opts.AdminPassword))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/redirects", http.StatusFound)
		})
		r.Get("/redirects", h.ListAliases)
		r.Get("/redirects/new", h.NewAliasForm)
		r.Post("/redirects/new", h.CreateAlias)
		r.Post("/redirects/{linkID}/delete", h.DeleteAlias)
		r.Get("/analytics", h.AnalyticsSettings)
		r.Post("/analytics", h.SaveAnalyticsSettings)
	})

	return r
}

// aliasRoute holds the segments of a public redirect link.
// Only LinkID takes part in the lookup.
type aliasRoute struct {
	Partner string
	Host    string
	LinkID  string
}

func aliasRouteFromRequest(r *http.Request) aliasRoute {
	return aliasRoute{
		Partner: chi.URLParam(r, "partner"),
		Host:    chi.URLParam(r, "host"),
		LinkID:  sanitize.Key(chi.URLParam(r, "linkID")),
	}
}

// RedirectAlias handles GET /redirect/{partner}/{host}/{linkID}
func (h *Handler) RedirectAlias(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)
	route := aliasRouteFromRequest(r)

	log.Debug("Alias requested",
		"partner", route.Partner,
		"host", route.Host,
		"link_id", route.LinkID,
	)

	alias, err := h.redirects.Resolve(r.Context(), route.LinkID)
	if err != nil {
		if !errors.Is(err, domain.ErrAliasNotFound) {
			log.Error("Failed to resolve alias", "link_id", route.LinkID, "error", err)
		}
		h.NotFound(w, r)
		return
	}

	doc, err := render.Redirect(alias.TargetURL, h.analytics.Current())
	if err != nil {
		log.Error("Failed to render redirect document", "link_id", route.LinkID, "error", err)
		h.NotFound(w, r)
		return
	}

	metrics.RecordRedirectPage()
	w.Header().Set("Cache-Control", "no-store")
	respondHTML(w, http.StatusOK, doc)
}

// NotFound serves the default content for paths that do not resolve to an alias
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	metrics.RecordFallthrough()
	respondDefaultContent(w, h.logger)
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /health/ready
func (h *Handler) ReadinessCheck(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := ready(ctx); err != nil {
				logger.FromContext(r.Context(), h.logger).Warn("Readiness check failed", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}

		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

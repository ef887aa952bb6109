package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"redirect-analytics/internal/domain"
	"redirect-analytics/internal/render"
	"redirect-analytics/internal/service"
	"redirect-analytics/pkg/logger"
	"redirect-analytics/pkg/sanitize"
	"redirect-analytics/pkg/validator"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Page titles
const (
	titleRedirects   = "Redirects"
	titleAddRedirect = "Add Redirect"
	titleAnalytics   = "Analytics Provider"
)

// Banner messages
const (
	msgGenerated      = "Generated Redirect Link:"
	msgCreateFailed   = "Failed to generate the redirect link. Please try again."
	msgFixForm        = "Please correct the following fields:"
	msgSettingsSaved  = "Settings saved."
	msgSettingsFailed = "Failed to save settings. Please try again."
	msgListFailed     = "Failed to load redirects. Please try again."
	msgDeleteFailed   = "Failed to delete the redirect. Please try again."
)

// aliasForm is the submitted "Add Redirect" form. The json tags name the
// form fields in validation errors.
type aliasForm struct {
	PartnerName string `json:"partner_name"`
	RedirectURL string `json:"redirect_url"`
	LinkID      string `json:"link_id"`
	Note        string `json:"note"`
}

func aliasFormFromValues(values url.Values) aliasForm {
	return aliasForm{
		PartnerName: values.Get("partner_name"),
		RedirectURL: values.Get("redirect_url"),
		LinkID:      values.Get("link_id"),
		Note:        values.Get("note"),
	}
}

// Validate checks that every required field is present
func (f aliasForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.PartnerName, validation.Required.Error("Partner Name is required")),
		validation.Field(&f.RedirectURL, validation.Required.Error("Redirect URL is required")),
		validation.Field(&f.LinkID,
			validation.Required.Error("Link ID is required"),
			validation.RuneLength(0, validator.MaxLinkIDLength),
		),
	)
}

func (f aliasForm) view() render.AliasForm {
	return render.AliasForm{
		PartnerName: f.PartnerName,
		RedirectURL: f.RedirectURL,
		LinkID:      f.LinkID,
		Note:        f.Note,
	}
}

// validationDetails flattens ozzo errors into sorted "field: message" lines
func validationDetails(err error) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(errs))
	for field, fieldErr := range errs {
		details = append(details, fmt.Sprintf("%s: %s", field, fieldErr.Error()))
	}
	sort.Strings(details)
	return details
}

// inputErrorMessage explains a rejected alias in terms of the form fields
func inputErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyPartner):
		return "partner_name: Partner Name is required"
	case errors.Is(err, validator.ErrInvalidScheme):
		return "redirect_url: Redirect URL must use http or https"
	case errors.Is(err, validator.ErrEmptyURL),
		errors.Is(err, validator.ErrInvalidURL),
		errors.Is(err, validator.ErrInvalidHost):
		return "redirect_url: Redirect URL is not a valid URL"
	case errors.Is(err, domain.ErrEmptyLinkID),
		errors.Is(err, validator.ErrInvalidLinkIDLength),
		errors.Is(err, validator.ErrInvalidLinkIDFormat):
		return fmt.Sprintf(`link_id: Link ID must be 1-%d characters of lowercase letters, digits, "-" or "_"`, validator.MaxLinkIDLength)
	default:
		return err.Error()
	}
}

// ListAliases handles GET /admin/redirects
func (h *Handler) ListAliases(w http.ResponseWriter, r *http.Request) {
	listings, err := h.redirects.ListAliases(r.Context())
	if err != nil {
		logger.FromContext(r.Context(), h.logger).Error("Failed to list aliases", "error", err)
		respondPage(w, h.logger, http.StatusInternalServerError, render.PageAliasList, render.PageData{
			Title:  titleRedirects,
			Banner: render.Failure(msgListFailed),
		})
		return
	}

	respondPage(w, h.logger, http.StatusOK, render.PageAliasList, render.PageData{
		Title:   titleRedirects,
		Aliases: listings,
	})
}

// NewAliasForm handles GET /admin/redirects/new
func (h *Handler) NewAliasForm(w http.ResponseWriter, r *http.Request) {
	respondPage(w, h.logger, http.StatusOK, render.PageAliasForm, render.PageData{
		Title: titleAddRedirect,
	})
}

// CreateAlias handles POST /admin/redirects/new
func (h *Handler) CreateAlias(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.logger)

	if err := r.ParseForm(); err != nil {
		respondPage(w, h.logger, http.StatusBadRequest, render.PageAliasForm, render.PageData{
			Title:  titleAddRedirect,
			Banner: render.Failure("Invalid form submission."),
		})
		return
	}

	form := aliasFormFromValues(r.PostForm)
	page := render.PageData{Title: titleAddRedirect, Form: form.view()}

	if err := form.Validate(); err != nil {
		page.Banner = render.Failure(msgFixForm, validationDetails(err)...)
		respondPage(w, h.logger, http.StatusBadRequest, render.PageAliasForm, page)
		return
	}

	_, link, err := h.redirects.CreateAlias(r.Context(), service.CreateAliasInput{
		PartnerName: form.PartnerName,
		TargetURL:   form.RedirectURL,
		LinkID:      form.LinkID,
		Note:        form.Note,
	})
	switch {
	case err == nil:
		page.Form = render.AliasForm{}
		page.Banner = render.Success(msgGenerated, link)
		respondPage(w, h.logger, http.StatusCreated, render.PageAliasForm, page)

	case errors.Is(err, domain.ErrLinkIDTaken):
		page.Banner = render.Failure(fmt.Sprintf("The Link ID %q is already in use. Choose another one.", sanitize.Key(form.LinkID)))
		respondPage(w, h.logger, http.StatusConflict, render.PageAliasForm, page)

	case errors.Is(err, service.ErrInvalidInput):
		page.Banner = render.Failure(msgFixForm, inputErrorMessage(err))
		respondPage(w, h.logger, http.StatusBadRequest, render.PageAliasForm, page)

	default:
		log.Error("Failed to create alias", "link_id", form.LinkID, "error", err)
		page.Banner = render.Failure(msgCreateFailed)
		respondPage(w, h.logger, http.StatusInternalServerError, render.PageAliasForm, page)
	}
}

// DeleteAlias handles POST /admin/redirects/{linkID}/delete
func (h *Handler) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	linkID := sanitize.Key(chi.URLParam(r, "linkID"))

	err := h.redirects.DeleteAlias(r.Context(), linkID)
	if err == nil {
		http.Redirect(w, r, "/admin/redirects", http.StatusSeeOther)
		return
	}

	status := http.StatusInternalServerError
	banner := render.Failure(msgDeleteFailed)
	if errors.Is(err, domain.ErrAliasNotFound) {
		status = http.StatusNotFound
		banner = render.Failure(fmt.Sprintf("No redirect with Link ID %q exists.", linkID))
	} else {
		logger.FromContext(r.Context(), h.logger).Error("Failed to delete alias", "link_id", linkID, "error", err)
	}

	page := render.PageData{Title: titleRedirects, Banner: banner}
	if listings, listErr := h.redirects.ListAliases(r.Context()); listErr == nil {
		page.Aliases = listings
	}
	respondPage(w, h.logger, status, render.PageAliasList, page)
}

// AnalyticsSettings handles GET /admin/analytics
func (h *Handler) AnalyticsSettings(w http.ResponseWriter, r *http.Request) {
	respondPage(w, h.logger, http.StatusOK, render.PageAnalyticsForm, render.PageData{
		Title:    titleAnalytics,
		Settings: h.analytics.Current(),
	})
}

// analyticsSettingsFromValues reads the settings form. A checkbox is on when
// its field is present at all.
func analyticsSettingsFromValues(values url.Values) domain.AnalyticsSettings {
	checked := func(name string) bool {
		_, ok := values[name]
		return ok
	}

	return domain.AnalyticsSettings{
		GoogleEnabled:    checked("analytics_google"),
		GoogleTrackingID: values.Get("google_analytics_code"),
		UmamiEnabled:     checked("analytics_umami"),
		UmamiTrackerURL:  values.Get("umami_tracker_url"),
		UmamiWebsiteID:   values.Get("umami_website_id"),
		CustomEnabled:    checked("analytics_custom"),
		CustomScript:     values.Get("custom_script"),
	}
}

// SaveAnalyticsSettings handles POST /admin/analytics
func (h *Handler) SaveAnalyticsSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondPage(w, h.logger, http.StatusBadRequest, render.PageAnalyticsForm, render.PageData{
			Title:    titleAnalytics,
			Banner:   render.Failure("Invalid form submission."),
			Settings: h.analytics.Current(),
		})
		return
	}

	saved, err := h.analytics.Save(r.Context(), analyticsSettingsFromValues(r.PostForm))
	if err != nil {
		logger.FromContext(r.Context(), h.logger).Error("Failed to save analytics settings", "error", err)
		respondPage(w, h.logger, http.StatusInternalServerError, render.PageAnalyticsForm, render.PageData{
			Title:    titleAnalytics,
			Banner:   render.Failure(msgSettingsFailed),
			Settings: saved,
		})
		return
	}

	respondPage(w, h.logger, http.StatusOK, render.PageAnalyticsForm, render.PageData{
		Title:    titleAnalytics,
		Banner:   render.Success(msgSettingsSaved, ""),
		Settings: saved,
	})
}

// Package render produces the HTML documents served by the application:
// the interstitial redirect document and the admin pages.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"redirect-analytics/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

// DelayMS is how long the redirect document waits before navigating.
const DelayMS = 2000

// ErrEmptyTarget is returned when a redirect document is requested without a destination.
var ErrEmptyTarget = errors.New("render: empty target URL")

// Page names
const (
	PageAliasList     = "alias_list"
	PageAliasForm     = "alias_form"
	PageAnalyticsForm = "analytics_form"
)

var (
	redirectTemplate = template.Must(template.ParseFS(files, "templates/redirect.html"))
	notFoundTemplate = template.Must(template.ParseFS(files, "templates/not_found.html"))
	pageTemplates    = parsePages(PageAliasList, PageAliasForm, PageAnalyticsForm)
)

func parsePages(names ...string) map[string]*template.Template {
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[name] = template.Must(template.ParseFS(files, "templates/layout.html", "templates/"+name+".html"))
	}
	return pages
}

type googleSnippet struct {
	TrackingID string
}

type umamiSnippet struct {
	TrackerURL string
	WebsiteID  string
}

type redirectDocument struct {
	TargetURL string
	DelayMS   int
	Google    *googleSnippet
	Umami     *umamiSnippet
	Custom    template.HTML
}

// Redirect renders the interstitial document for targetURL with the active
// analytics snippets in Google, Umami, Custom order.
//
// The custom script is operator supplied and emitted verbatim. All other
// values are escaped for the context they appear in.
func Redirect(targetURL string, settings domain.AnalyticsSettings) (string, error) {
	if strings.TrimSpace(targetURL) == "" {
		return "", ErrEmptyTarget
	}

	doc := redirectDocument{
		TargetURL: targetURL,
		DelayMS:   DelayMS,
	}
	if settings.GoogleActive() {
		doc.Google = &googleSnippet{TrackingID: settings.GoogleTrackingID}
	}
	if settings.UmamiActive() {
		doc.Umami = &umamiSnippet{
			TrackerURL: strings.TrimRight(settings.UmamiTrackerURL, "/"),
			WebsiteID:  settings.UmamiWebsiteID,
		}
	}
	if settings.CustomActive() {
		doc.Custom = template.HTML(settings.CustomScript) //nolint:gosec
	}

	var buf bytes.Buffer
	if err := redirectTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render redirect document: %w", err)
	}
	return buf.String(), nil
}

// Banner is the notice shown above an admin page.
type Banner struct {
	Kind    string // "updated" or "error"
	Message string
	Link    string
	Details []string
}

// Success returns a confirmation banner, optionally followed by a link.
func Success(message, link string) *Banner {
	return &Banner{Kind: "updated", Message: message, Link: link}
}

// Failure returns an error banner with optional detail lines.
func Failure(message string, details ...string) *Banner {
	return &Banner{Kind: "error", Message: message, Details: details}
}

// AliasForm holds the values echoed back into the "Add Redirect" form.
type AliasForm struct {
	PartnerName string
	RedirectURL string
	LinkID      string
	Note        string
}

// PageData is the view model shared by the admin pages. Each page reads the
// fields it needs.
type PageData struct {
	Title    string
	Banner   *Banner
	Aliases  []domain.AliasListing
	Form     AliasForm
	Settings domain.AnalyticsSettings
}

// Page renders the named admin page into w.
func Page(w io.Writer, name string, data PageData) error {
	tmpl, ok := pageTemplates[name]
	if !ok {
		return fmt.Errorf("render: unknown page %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// DefaultContent writes the page served when a request does not resolve to an alias.
func DefaultContent(w io.Writer) error {
	return notFoundTemplate.Execute(w, nil)
}

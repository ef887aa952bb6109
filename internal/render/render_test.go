package render

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"redirect-analytics/internal/domain"
	"redirect-analytics/pkg/sanitize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var hrefLiteral = regexp.MustCompile(`window\.location\.href = (.*?);`)

// embeddedTarget decodes the destination literal written into the navigation script
func embeddedTarget(t *testing.T, doc string) string {
	t.Helper()

	m := hrefLiteral.FindStringSubmatch(doc)
	require.Len(t, m, 2, "navigation script not found")

	var target string
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(m[1])), &target))
	return target
}

func allProviders() domain.AnalyticsSettings {
	return domain.AnalyticsSettings{
		GoogleEnabled:    true,
		GoogleTrackingID: "G-123AD456",
		UmamiEnabled:     true,
		UmamiTrackerURL:  "https://analytics.example.com",
		UmamiWebsiteID:   "53484c4f",
		CustomEnabled:    true,
		CustomScript:     `<script data-analytics="custom">track()</script>`,
	}
}

func TestRedirect_Document(t *testing.T) {
	doc, err := Redirect("https://example.com/page", domain.AnalyticsSettings{})

	require.NoError(t, err)
	assert.Contains(t, doc, `<meta charset="UTF-8">`)
	assert.Contains(t, doc, "<title>Redirecting...</title>")
	assert.Contains(t, doc, "setTimeout(")
	assert.Contains(t, doc, "2000")
	assert.Contains(t, doc, "Redirecting in 2 seconds...")
	assert.Equal(t, "https://example.com/page", embeddedTarget(t, doc))
}

func TestRedirect_EmptyTarget(t *testing.T) {
	for _, target := range []string{"", "   "} {
		doc, err := Redirect(target, allProviders())

		assert.ErrorIs(t, err, ErrEmptyTarget)
		assert.Empty(t, doc)
	}
}

func TestRedirect_TargetRoundTrip(t *testing.T) {
	targets := []string{
		"https://example.com/page",
		"https://example.com/search?q=a&b=c#frag",
		"https://example.com/</script><script>alert(1)</script>",
		`https://example.com/"quoted"/'single'`,
		"https://example.com/ünïcödé?x= ",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			doc, err := Redirect(target, domain.AnalyticsSettings{})

			require.NoError(t, err)
			assert.Equal(t, target, embeddedTarget(t, doc))
			assert.NotContains(t, doc, "<script>alert(1)")
		})
	}
}

func TestRedirect_NoProviders(t *testing.T) {
	doc, err := Redirect("https://example.com", domain.AnalyticsSettings{})

	require.NoError(t, err)
	assert.NotContains(t, doc, "data-analytics")
	assert.Equal(t, 1, strings.Count(doc, "<script"))
}

func TestRedirect_ProviderOrder(t *testing.T) {
	doc, err := Redirect("https://example.com", allProviders())
	require.NoError(t, err)

	google := strings.Index(doc, `data-analytics="google"`)
	umami := strings.Index(doc, `data-analytics="umami"`)
	custom := strings.Index(doc, `data-analytics="custom"`)
	navigation := strings.Index(doc, "window.location.href")

	require.NotEqual(t, -1, google)
	require.NotEqual(t, -1, umami)
	require.NotEqual(t, -1, custom)
	assert.Less(t, google, umami)
	assert.Less(t, umami, custom)
	assert.Less(t, custom, navigation)
}

func TestRedirect_SnippetContents(t *testing.T) {
	doc, err := Redirect("https://example.com", allProviders())
	require.NoError(t, err)

	assert.Contains(t, doc, "https://www.googletagmanager.com/gtag/js?id=G-123AD456")
	assert.Contains(t, doc, `gtag('config', "G-123AD456");`)
	assert.Contains(t, doc, `src="https://analytics.example.com/script.js"`)
	assert.Contains(t, doc, `data-website-id="53484c4f"`)
	assert.Contains(t, doc, `<script data-analytics="custom">track()</script>`)
}

func TestRedirect_SnippetIffActive(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.AnalyticsSettings
		google   bool
		umami    bool
		custom   bool
	}{
		{
			name:     "Google enabled with id",
			settings: domain.AnalyticsSettings{GoogleEnabled: true, GoogleTrackingID: "G-1"},
			google:   true,
		},
		{
			name:     "Google enabled without id",
			settings: domain.AnalyticsSettings{GoogleEnabled: true},
		},
		{
			name:     "Google id without flag",
			settings: domain.AnalyticsSettings{GoogleTrackingID: "G-1"},
		},
		{
			name:     "Umami missing website id",
			settings: domain.AnalyticsSettings{UmamiEnabled: true, UmamiTrackerURL: "https://u.example.com"},
		},
		{
			name:     "Umami missing tracker",
			settings: domain.AnalyticsSettings{UmamiEnabled: true, UmamiWebsiteID: "site"},
		},
		{
			name: "Umami complete",
			settings: domain.AnalyticsSettings{
				UmamiEnabled: true, UmamiTrackerURL: "https://u.example.com", UmamiWebsiteID: "site",
			},
			umami: true,
		},
		{
			name:     "Custom whitespace only",
			settings: domain.AnalyticsSettings{CustomEnabled: true, CustomScript: "  \n "},
		},
		{
			name:     "Custom disabled",
			settings: domain.AnalyticsSettings{CustomScript: `<script data-analytics="custom"></script>`},
		},
		{
			name:     "Custom enabled",
			settings: domain.AnalyticsSettings{CustomEnabled: true, CustomScript: `<script data-analytics="custom"></script>`},
			custom:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Redirect("https://example.com", tt.settings)
			require.NoError(t, err)

			assert.Equal(t, tt.google, strings.Contains(doc, `data-analytics="google"`))
			assert.Equal(t, tt.google, strings.Contains(doc, "googletagmanager"))
			assert.Equal(t, tt.umami, strings.Contains(doc, `data-analytics="umami"`))
			assert.Equal(t, tt.custom, strings.Contains(doc, `data-analytics="custom"`))
		})
	}
}

func TestRedirect_EscapesProviderValues(t *testing.T) {
	doc, err := Redirect("https://example.com", domain.AnalyticsSettings{
		GoogleEnabled:    true,
		GoogleTrackingID: `G-1"></script><script>alert(1)</script>`,
		UmamiEnabled:     true,
		UmamiTrackerURL:  "https://u.example.com",
		UmamiWebsiteID:   `site" onload="alert(1)`,
	})

	require.NoError(t, err)
	assert.NotContains(t, doc, "<script>alert(1)")
	assert.NotContains(t, doc, `onload="alert(1)`)
}

// scriptElements parses doc the way a browser does and returns each script
// element's src attribute and body.
func scriptElements(t *testing.T, doc string) (srcs, bodies []string) {
	t.Helper()

	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			src, body := "", ""
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					src = attr.Val
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				body += c.Data
			}
			srcs = append(srcs, src)
			bodies = append(bodies, body)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return srcs, bodies
}

func TestRedirect_SelfClosingCustomScript(t *testing.T) {
	doc, err := Redirect("https://example.com/page", domain.AnalyticsSettings{
		CustomEnabled: true,
		CustomScript:  sanitize.Script(`<script async src="https://t.example.com/a.js" />`),
	})
	require.NoError(t, err)

	srcs, bodies := scriptElements(t, doc)
	require.Len(t, srcs, 2)

	assert.Equal(t, "https://t.example.com/a.js", srcs[0])
	assert.Empty(t, strings.TrimSpace(bodies[0]))

	assert.Empty(t, srcs[1])
	assert.Contains(t, bodies[1], "setTimeout(")
	assert.Contains(t, bodies[1], "window.location.href")
}

func TestPage_AliasList(t *testing.T) {
	var buf bytes.Buffer
	err := Page(&buf, PageAliasList, PageData{
		Title: "Redirects",
		Aliases: []domain.AliasListing{{
			Alias:        domain.Alias{PartnerName: "Acme", LinkID: "promo1", TargetURL: "https://example.com/page", Note: "spring"},
			RedirectLink: "https://site.test/redirect/Acme/example.com/promo1",
		}},
	})

	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "<th>Note</th>")
	assert.Contains(t, html, "<th>Redirect Link</th>")
	assert.Contains(t, html, "<th>Redirect URL</th>")
	assert.Contains(t, html, `href="https://site.test/redirect/Acme/example.com/promo1" target="_blank"`)
	assert.Contains(t, html, `href="https://example.com/page" target="_blank"`)
	assert.Contains(t, html, `action="/admin/redirects/promo1/delete"`)
	assert.Contains(t, html, "spring")
}

func TestPage_EmptyAliasList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page(&buf, PageAliasList, PageData{Title: "Redirects"}))
	assert.Contains(t, buf.String(), "No redirects found")
}

func TestPage_Banner(t *testing.T) {
	var buf bytes.Buffer
	err := Page(&buf, PageAliasForm, PageData{
		Title:  "Add Redirect",
		Banner: Success("Generated Redirect Link:", "https://site.test/redirect/Acme/example.com/promo1"),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `<div class="updated"><p>Generated Redirect Link: <a href="https://site.test/redirect/Acme/example.com/promo1">`)

	buf.Reset()
	err = Page(&buf, PageAliasForm, PageData{
		Title:  "Add Redirect",
		Banner: Failure("Please correct the form.", "partner_name: cannot be blank"),
		Form:   AliasForm{RedirectURL: `"><script>x()</script>`},
	})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, `<div class="error">`)
	assert.Contains(t, html, "<li>partner_name: cannot be blank</li>")
	assert.NotContains(t, html, "<script>x()")
}

func TestPage_AnalyticsForm(t *testing.T) {
	var buf bytes.Buffer
	err := Page(&buf, PageAnalyticsForm, PageData{
		Title:    "Analytics Provider",
		Settings: domain.AnalyticsSettings{GoogleEnabled: true, GoogleTrackingID: "G-1", CustomScript: "<script></script>"},
	})

	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, `id="analytics_google" value="1" checked>`)
	assert.Contains(t, html, `id="analytics_umami" value="1">`)
	assert.Contains(t, html, `value="G-1"`)
	assert.Contains(t, html, "&lt;script&gt;&lt;/script&gt;</textarea>")
}

func TestPage_Unknown(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Page(&buf, "missing", PageData{}))
}

func TestDefaultContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DefaultContent(&buf))
	assert.Contains(t, buf.String(), "Page not found")
	assert.NotContains(t, buf.String(), "window.location")
}

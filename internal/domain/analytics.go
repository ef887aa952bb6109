package domain

import "strings"

// Provider names one of the supported analytics integrations.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderUmami  Provider = "umami"
	ProviderCustom Provider = "custom"
)

// Providers lists the providers in the order their snippets are rendered.
var Providers = []Provider{ProviderGoogle, ProviderUmami, ProviderCustom}

// Persisted setting keys.
const (
	KeyUseGoogleAnalytics    = "use_google_analytics"
	KeyGoogleAnalyticsCode   = "google_analytics_code"
	KeyUseUmamiAnalytics     = "use_umami_analytics"
	KeyUmamiTrackerURL       = "umami_tracker_url"
	KeyUmamiWebsiteID        = "umami_website_id"
	KeyUseCustomAnalytics    = "use_custom_analytics"
	KeyCustomAnalyticsScript = "custom_analytics_script"
)

// SettingKeys is every key owned by AnalyticsSettings.
var SettingKeys = []string{
	KeyUseGoogleAnalytics,
	KeyGoogleAnalyticsCode,
	KeyUseUmamiAnalytics,
	KeyUmamiTrackerURL,
	KeyUmamiWebsiteID,
	KeyUseCustomAnalytics,
	KeyCustomAnalyticsScript,
}

// AnalyticsSettings is the process-wide analytics provider configuration.
// The zero value is the default: every provider disabled.
type AnalyticsSettings struct {
	GoogleEnabled    bool
	GoogleTrackingID string

	UmamiEnabled    bool
	UmamiTrackerURL string
	UmamiWebsiteID  string

	CustomEnabled bool
	CustomScript  string
}

// GoogleActive reports whether the Google snippet should be rendered.
func (s AnalyticsSettings) GoogleActive() bool {
	return s.GoogleEnabled && s.GoogleTrackingID != ""
}

// UmamiActive reports whether the Umami snippet should be rendered.
func (s AnalyticsSettings) UmamiActive() bool {
	return s.UmamiEnabled && s.UmamiTrackerURL != "" && s.UmamiWebsiteID != ""
}

// CustomActive reports whether the custom script should be rendered.
func (s AnalyticsSettings) CustomActive() bool {
	return s.CustomEnabled && strings.TrimSpace(s.CustomScript) != ""
}

// Active reports whether the given provider will be rendered.
func (s AnalyticsSettings) Active(p Provider) bool {
	switch p {
	case ProviderGoogle:
		return s.GoogleActive()
	case ProviderUmami:
		return s.UmamiActive()
	case ProviderCustom:
		return s.CustomActive()
	default:
		return false
	}
}

// Values flattens the settings into the persisted key/value form.
func (s AnalyticsSettings) Values() map[string]string {
	return map[string]string{
		KeyUseGoogleAnalytics:    formatBool(s.GoogleEnabled),
		KeyGoogleAnalyticsCode:   s.GoogleTrackingID,
		KeyUseUmamiAnalytics:     formatBool(s.UmamiEnabled),
		KeyUmamiTrackerURL:       s.UmamiTrackerURL,
		KeyUmamiWebsiteID:        s.UmamiWebsiteID,
		KeyUseCustomAnalytics:    formatBool(s.CustomEnabled),
		KeyCustomAnalyticsScript: s.CustomScript,
	}
}

// AnalyticsSettingsFromValues rebuilds settings from stored values.
// Missing keys keep their zero value.
func AnalyticsSettingsFromValues(values map[string]string) AnalyticsSettings {
	return AnalyticsSettings{
		GoogleEnabled:    parseBool(values[KeyUseGoogleAnalytics]),
		GoogleTrackingID: values[KeyGoogleAnalyticsCode],
		UmamiEnabled:     parseBool(values[KeyUseUmamiAnalytics]),
		UmamiTrackerURL:  values[KeyUmamiTrackerURL],
		UmamiWebsiteID:   values[KeyUmamiWebsiteID],
		CustomEnabled:    parseBool(values[KeyUseCustomAnalytics]),
		CustomScript:     values[KeyCustomAnalyticsScript],
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

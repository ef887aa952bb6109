package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"redirect-analytics/pkg/validator"
)

// Alias is one redirect record: a link id that maps to a destination URL.
// The partner name is the display title used in the public redirect link.
type Alias struct {
	ID          int64     // Store generated identifier
	PartnerName string    // Partner/website the link is published on
	LinkID      string    // Unique slug resolved by /redirect/{partner}/{host}/{linkID}
	TargetURL   string    // Absolute destination URL
	Note        string    // Free-text annotation for admins
	CreatedAt   time.Time // When the alias was created
}

// AliasListing pairs an alias with its public redirect link for the admin list.
type AliasListing struct {
	Alias
	RedirectLink string
}

// Domain errors
var (
	ErrAliasNotFound   = errors.New("alias not found")
	ErrLinkIDTaken     = errors.New("link id already exists")
	ErrEmptyPartner    = errors.New("partner name cannot be empty")
	ErrEmptyLinkID     = errors.New("link id cannot be empty")
	ErrInvalidTarget   = errors.New("target URL is invalid")
	ErrInvalidBaseURL  = errors.New("base URL is invalid")
	ErrTargetHasNoHost = errors.New("target URL has no host")
)

// NewAlias creates a new alias stamped with the current time.
func NewAlias(partnerName, targetURL, linkID, note string) *Alias {
	return &Alias{
		PartnerName: partnerName,
		LinkID:      linkID,
		TargetURL:   targetURL,
		Note:        note,
		CreatedAt:   time.Now(),
	}
}

// Validate checks the alias fields before it is saved.
func (a *Alias) Validate() error {
	if strings.TrimSpace(a.PartnerName) == "" {
		return ErrEmptyPartner
	}
	if err := validator.ValidateURL(a.TargetURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if a.LinkID == "" {
		return ErrEmptyLinkID
	}
	return validator.ValidateLinkID(a.LinkID)
}

// TargetHost returns the hostname of the target URL, without port.
func (a *Alias) TargetHost() (string, error) {
	parsed, err := url.Parse(a.TargetURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	host := parsed.Hostname()
	if host == "" {
		return "", ErrTargetHasNoHost
	}
	return host, nil
}

// RedirectLink builds the public link {baseURL}/redirect/{partner}/{host}/{linkID}.
// Partner and host are informational; only the link id is used for lookup.
func (a *Alias) RedirectLink(baseURL string) (string, error) {
	if a.LinkID == "" {
		return "", ErrEmptyLinkID
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", ErrInvalidBaseURL
	}

	host, err := a.TargetHost()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/redirect/%s/%s/%s",
		base.String(),
		url.PathEscape(a.PartnerName),
		host,
		url.PathEscape(a.LinkID),
	), nil
}

package validator

import (
	"net/url"
	"strings"
)

// MaxLinkIDLength bounds the length of a link id.
const MaxLinkIDLength = 64

// ValidateURL checks if a URL is an absolute http(s) URL with a host
func ValidateURL(urlStr string) error {
	urlStr = strings.TrimSpace(urlStr)

	if urlStr == "" {
		return ErrEmptyURL
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return ErrInvalidURL
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return ErrInvalidScheme
	}

	if parsedURL.Hostname() == "" {
		return ErrInvalidHost
	}

	return nil
}

// NormalizeURL trims the input and prefixes https:// when no scheme is given,
// so "example.com/page" is stored as "https://example.com/page". The result
// is validated with ValidateURL.
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.TrimSpace(urlStr))

	if urlStr == "" {
		return "", ErrEmptyURL
	}

	if !strings.Contains(urlStr, "://") {
		if strings.HasPrefix(urlStr, "//") {
			urlStr = "https:" + urlStr
		} else {
			urlStr = "https://" + urlStr
		}
	}

	if err := ValidateURL(urlStr); err != nil {
		return "", err
	}

	return urlStr, nil
}

// ValidateLinkID checks a normalized link id
func ValidateLinkID(linkID string) error {
	if len(linkID) < 1 || len(linkID) > MaxLinkIDLength {
		return ErrInvalidLinkIDLength
	}

	for _, char := range linkID {
		if !isLowerAlphanumeric(char) && char != '-' && char != '_' {
			return ErrInvalidLinkIDFormat
		}
	}

	return nil
}

func isLowerAlphanumeric(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= '0' && char <= '9')
}

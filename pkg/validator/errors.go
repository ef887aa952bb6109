package validator

import "errors"

var (
	ErrEmptyURL            = errors.New("URL cannot be empty")
	ErrInvalidURL          = errors.New("invalid URL format")
	ErrInvalidScheme       = errors.New("URL must use http or https scheme")
	ErrInvalidHost         = errors.New("URL must have a valid host")
	ErrInvalidLinkIDLength = errors.New("link id must be 1-64 characters")
	ErrInvalidLinkIDFormat = errors.New("link id must be lowercase alphanumeric with optional hyphens and underscores")
)

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "https URL", input: "https://example.com/page", wantErr: nil},
		{name: "http URL with port", input: "http://example.com:8080", wantErr: nil},
		{name: "empty", input: "   ", wantErr: ErrEmptyURL},
		{name: "missing scheme", input: "example.com", wantErr: ErrInvalidScheme},
		{name: "ftp scheme", input: "ftp://example.com", wantErr: ErrInvalidScheme},
		{name: "no host", input: "https://", wantErr: ErrInvalidHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "already absolute", input: "https://example.com/page", want: "https://example.com/page"},
		{name: "bare host gets https", input: "example.com", want: "https://example.com"},
		{name: "bare host with path", input: " example.com/promo?x=1 ", want: "https://example.com/promo?x=1"},
		{name: "protocol relative", input: "//cdn.example.com/a", want: "https://cdn.example.com/a"},
		{name: "control characters removed", input: "https://exa\tmple.com", want: "https://example.com"},
		{name: "empty", input: "", wantErr: ErrEmptyURL},
		{name: "ftp rejected", input: "ftp://example.com/file", wantErr: ErrInvalidScheme},
		{name: "javascript rejected", input: "javascript:alert(1)", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateLinkID(t *testing.T) {
	assert.NoError(t, ValidateLinkID("promo1"))
	assert.NoError(t, ValidateLinkID("spring-sale_2025"))
	assert.ErrorIs(t, ValidateLinkID(""), ErrInvalidLinkIDLength)
	assert.ErrorIs(t, ValidateLinkID(string(make([]byte, MaxLinkIDLength+1))), ErrInvalidLinkIDLength)
	assert.ErrorIs(t, ValidateLinkID("Promo"), ErrInvalidLinkIDFormat)
	assert.ErrorIs(t, ValidateLinkID("a/b"), ErrInvalidLinkIDFormat)
}

package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"https ok", "https://images.unsplash.com/photo-1?w=400", ""},
		{"http ok", "http://example.com/a.png", ""},
		{"empty", "", "URL is required"},
		{"ftp", "ftp://example.com/a.png", "http or https"},
		{"no host", "https:///a.png", "valid host"},
		{"too long", "https://example.com/" + strings.Repeat("a", maxURLLength), "must not exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL("imageUrl", tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("farmer@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Ravi <ravi@example.com>"))
}

func TestNormalizeYouTubeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10s", want: "dQw4w9WgXcQ"},
		{in: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "https://youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{in: "", wantErr: true},
		{in: "short", wantErr: true},
		{in: "https://vimeo.com/123456789", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeYouTubeID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

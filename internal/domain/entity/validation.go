package entity

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// maxNameLength bounds free-text names and titles.
const maxNameLength = 200

var youTubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidateURL validates that rawURL is a well-formed http(s) URL with a host.
// The server never fetches these URLs (they are rendered by clients), so no
// network lookups are performed.
func ValidateURL(field, rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: field, Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: field, Message: "URL is invalid"}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: field, Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: field, Message: "URL must have a valid host"}
	}

	return nil
}

// validateName checks that a required free-text field is present and bounded.
func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is too long (max %d characters)", field, maxNameLength),
		}
	}
	return nil
}

// validatePrice rejects negative prices.
func validatePrice(price float64) error {
	if price < 0 {
		return &ValidationError{Field: "price", Message: "price must be zero or greater"}
	}
	return nil
}

// ValidateEmail checks the address syntax only.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "email is invalid"}
	}
	return nil
}

// NormalizeYouTubeID accepts either a bare 11-character video ID or a full
// YouTube URL (watch?v=, youtu.be/, /embed/, /shorts/) and returns the ID.
func NormalizeYouTubeID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &ValidationError{Field: "youtubeId", Message: "youtubeId is required"}
	}
	if youTubeIDPattern.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", &ValidationError{Field: "youtubeId", Message: "youtubeId is invalid"}
	}

	var candidate string
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		candidate = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			candidate = v
		} else {
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts") {
				candidate = parts[1]
			}
		}
	}

	if !youTubeIDPattern.MatchString(candidate) {
		return "", &ValidationError{Field: "youtubeId", Message: "youtubeId is invalid"}
	}
	return candidate, nil
}

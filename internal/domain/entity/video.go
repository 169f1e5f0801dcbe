package entity

import (
	"strings"
	"time"
)

const (
	DefaultVideoDescription = "Expert agricultural tutorial."
	DefaultVideoCategory    = "Education"
)

// Video is a tutorial published to the farmer-facing app.
type Video struct {
	ID          int64
	Title       string
	YouTubeID   string
	Description string
	Category    string
	CreatedAt   time.Time
}

// ApplyDefaults fills optional fields left empty by the caller.
func (v *Video) ApplyDefaults() {
	v.Title = strings.TrimSpace(v.Title)
	if strings.TrimSpace(v.Description) == "" {
		v.Description = DefaultVideoDescription
	}
	if strings.TrimSpace(v.Category) == "" {
		v.Category = DefaultVideoCategory
	}
}

// Validate checks the title and normalizes YouTubeID in place.
func (v *Video) Validate() error {
	if err := validateName("title", v.Title); err != nil {
		return err
	}
	id, err := NormalizeYouTubeID(v.YouTubeID)
	if err != nil {
		return err
	}
	v.YouTubeID = id
	return nil
}

// WatchURL returns the public YouTube URL for the video.
func (v *Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.YouTubeID
}

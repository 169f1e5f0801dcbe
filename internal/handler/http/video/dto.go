// Package video provides HTTP handlers for the tutorial video library.
package video

import (
	"time"

	"agrisense/internal/domain/entity"
	videoUC "agrisense/internal/usecase/video"
)

// DTO is the JSON form of a video. The URLs are derived from the YouTube ID.
type DTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	YouTubeID   string    `json:"youtubeId"`
	EmbedURL    string    `json:"embedUrl"`
	WatchURL    string    `json:"watchUrl"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

// request accepts either a bare ID or a full YouTube link in youtubeId.
type request struct {
	Title       string `json:"title"`
	YouTubeID   string `json:"youtubeId"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (r request) input() videoUC.Input {
	return videoUC.Input{Title: r.Title, YouTubeID: r.YouTubeID, Description: r.Description, Category: r.Category}
}

func toDTO(v *entity.Video) DTO {
	return DTO{
		ID:          v.ID,
		Title:       v.Title,
		YouTubeID:   v.YouTubeID,
		EmbedURL:    "https://www.youtube.com/embed/" + v.YouTubeID,
		WatchURL:    v.WatchURL(),
		Description: v.Description,
		Category:    v.Category,
		CreatedAt:   v.CreatedAt,
	}
}

func toDTOs(vs []*entity.Video) []DTO {
	out := make([]DTO, 0, len(vs))
	for _, v := range vs {
		out = append(out, toDTO(v))
	}
	return out
}

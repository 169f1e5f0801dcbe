// Package video provides use cases for the tutorial video library.
// YouTube links are reduced to their 11-character video ID on write.
package video

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agrisense/internal/domain/entity"
	"agrisense/internal/repository"
)

// Sentinel errors for video use case operations.
var (
	// ErrVideoNotFound indicates that the requested video was not found.
	ErrVideoNotFound = errors.New("video not found")

	// ErrInvalidVideoID indicates that the provided video ID is not positive.
	ErrInvalidVideoID = errors.New("invalid video ID")
)

// Input is used for both create and update.
type Input struct {
	Title       string
	YouTubeID   string // an ID or any YouTube URL
	Description string
	Category    string
}

// Service provides video management use cases.
type Service struct {
	Repo repository.VideoRepository
}

// List returns all videos, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Video, error) {
	videos, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

// Search matches kw against title and description.
func (s *Service) Search(ctx context.Context, kw string) ([]*entity.Video, error) {
	videos, err := s.Repo.Search(ctx, strings.TrimSpace(kw))
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	return videos, nil
}

// Get retrieves a single video by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Video, error) {
	if id <= 0 {
		return nil, ErrInvalidVideoID
	}
	v, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	if v == nil {
		return nil, ErrVideoNotFound
	}
	return v, nil
}

// Create applies defaults, validates and stores a new video.
func (s *Service) Create(ctx context.Context, in Input) (*entity.Video, error) {
	v := &entity.Video{
		Title:       in.Title,
		YouTubeID:   in.YouTubeID,
		Description: in.Description,
		Category:    in.Category,
	}
	v.ApplyDefaults()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return v, nil
}

// Update replaces every field of an existing video.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*entity.Video, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Title = in.Title
	v.YouTubeID = in.YouTubeID
	v.Description = in.Description
	v.Category = in.Category
	v.ApplyDefaults()
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, v); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("update video: %w", err)
	}
	return v, nil
}

// Delete removes a video by its ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidVideoID
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("delete video: %w", err)
	}
	return nil
}

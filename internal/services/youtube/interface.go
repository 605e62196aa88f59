package youtube

import (
	"context"
	"time"
)

// YouTubeClient interface for YouTube operations
type YouTubeClient interface {
	// ParseYouTubeURL extracts video ID from YouTube URL
	ParseYouTubeURL(url string) (string, error)

	// GetVideoInfo retrieves video metadata
	GetVideoInfo(ctx context.Context, videoID string) (*VideoInfo, error)

	// IsYouTubeURL checks if the provided URL is a valid YouTube video URL
	IsYouTubeURL(url string) bool
}

// VideoInfo contains YouTube video metadata
type VideoInfo struct {
	ID           string
	Title        string
	Author       string
	Duration     time.Duration
	ThumbnailURL string
}

package youtube

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/kkdai/youtube/v2"
)

var (
	videoURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=[\w-]+`),
		regexp.MustCompile(`^https?://(www\.)?youtube\.com/embed/[\w-]+`),
		regexp.MustCompile(`^https?://youtu\.be/[\w-]+`),
		regexp.MustCompile(`^https?://(www\.)?youtube\.com/v/[\w-]+`),
		regexp.MustCompile(`^https?://(m\.)?youtube\.com/watch\?v=[\w-]+`),
		regexp.MustCompile(`^https?://(www\.)?youtube\.com/shorts/[\w-]+`),
	}

	videoIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
)

type Client struct {
	client *youtube.Client
}

// NewClient creates a new YouTube client
func NewClient(timeout time.Duration) *Client {
	httpClient := &http.Client{
		Timeout: timeout,
	}

	return &Client{
		client: &youtube.Client{HTTPClient: httpClient},
	}
}

// IsYouTubeURL checks if the provided URL is a valid YouTube video URL
func (c *Client) IsYouTubeURL(url string) bool {
	for _, pattern := range videoURLPatterns {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}

// ParseYouTubeURL extracts video ID from YouTube URL
func (c *Client) ParseYouTubeURL(url string) (string, error) {
	matches := videoIDPattern.FindStringSubmatch(url)
	if len(matches) > 1 {
		return matches[1], nil
	}

	return "", fmt.Errorf("could not extract video ID from YouTube URL: %s", url)
}

// GetVideoInfo retrieves video metadata
func (c *Client) GetVideoInfo(ctx context.Context, videoID string) (*VideoInfo, error) {
	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	info := &VideoInfo{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
	}

	if len(video.Thumbnails) > 0 {
		info.ThumbnailURL = video.Thumbnails[0].URL
	}

	return info, nil
}

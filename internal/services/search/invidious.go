package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// InvidiousClient searches YouTube through an Invidious instance's JSON API.
type InvidiousClient struct {
	baseURL    string
	httpClient *http.Client
}

type invidiousThumbnail struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type invidiousVideo struct {
	Type            string               `json:"type"`
	Title           string               `json:"title"`
	VideoID         string               `json:"videoId"`
	Author          string               `json:"author"`
	LengthSeconds   int                  `json:"lengthSeconds"`
	LiveNow         bool                 `json:"liveNow"`
	VideoThumbnails []invidiousThumbnail `json:"videoThumbnails"`
}

func NewInvidiousClient(cfg *config.SearchConfig) *InvidiousClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &InvidiousClient{
		baseURL:    strings.TrimRight(cfg.InvidiousURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search queries /api/v1/search and keeps video results only.
func (c *InvidiousClient) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if limit < 1 {
		limit = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("page", "1")
	endpoint := c.baseURL + "/api/v1/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query search backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned status %d", resp.StatusCode)
	}

	var items []invidiousVideo
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]models.SearchResult, 0, limit)
	for _, item := range items {
		if len(results) >= limit {
			break
		}
		if item.Type != "" && item.Type != "video" {
			continue
		}
		if item.VideoID == "" {
			continue
		}
		results = append(results, c.toResult(item))
	}

	utils.LogDebug(ctx, "Search completed", utils.Fields{
		"query":   query,
		"limit":   limit,
		"results": len(results),
	})

	return results, nil
}

func (c *InvidiousClient) toResult(item invidiousVideo) models.SearchResult {
	result := models.SearchResult{
		ID:    item.VideoID,
		Title: item.Title,
		Link:  fmt.Sprintf(watchURLTemplate, item.VideoID),
	}
	// Live streams have no length.
	if item.LengthSeconds > 0 {
		result.Duration = utils.SecondsToClock(item.LengthSeconds)
	}
	if len(item.VideoThumbnails) > 0 {
		result.Thumbnail = stripQuery(c.absolute(item.VideoThumbnails[0].URL))
	}
	return result
}

// absolute resolves instance-relative thumbnail paths.
func (c *InvidiousClient) absolute(raw string) string {
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	if strings.HasPrefix(raw, "/") {
		return c.baseURL + raw
	}
	return raw
}

func stripQuery(raw string) string {
	return strings.SplitN(raw, "?", 2)[0]
}

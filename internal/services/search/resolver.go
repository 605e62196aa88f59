package search

import (
	"context"
	"fmt"

	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/services/youtube"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// Resolver answers single-result queries for concrete video links with a
// direct lookup and sends everything else to the fallback searcher.
type Resolver struct {
	youtube  youtube.YouTubeClient
	fallback Searcher
}

func NewResolver(yt youtube.YouTubeClient, fallback Searcher) *Resolver {
	return &Resolver{
		youtube:  yt,
		fallback: fallback,
	}
}

func (r *Resolver) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit == 1 && r.youtube != nil && r.youtube.IsYouTubeURL(query) {
		result, err := r.lookup(ctx, query)
		if err == nil {
			return []models.SearchResult{*result}, nil
		}
		utils.LogWarn(ctx, "Direct video lookup failed, falling back to search", utils.Fields{
			"query": query,
			"error": err.Error(),
		})
	}

	if r.fallback == nil {
		return nil, fmt.Errorf("no search backend configured")
	}
	return r.fallback.Search(ctx, query, limit)
}

func (r *Resolver) lookup(ctx context.Context, link string) (*models.SearchResult, error) {
	videoID, err := r.youtube.ParseYouTubeURL(link)
	if err != nil {
		return nil, err
	}

	info, err := r.youtube.GetVideoInfo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	result := &models.SearchResult{
		ID:        info.ID,
		Title:     info.Title,
		Link:      fmt.Sprintf(watchURLTemplate, info.ID),
		Thumbnail: stripQuery(info.ThumbnailURL),
	}
	if info.Duration > 0 {
		result.Duration = utils.SecondsToClock(int(info.Duration.Seconds()))
	}
	return result, nil
}

package platform

import (
	"context"

	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// sliderSearchLimit is how many results ordinal selection chooses from.
const sliderSearchLimit = 10

// Details returns title, duration and thumbnail of the first search hit
// for link, or nil.
func (a *Adapter) Details(ctx context.Context, link string, videoID bool) *models.VideoDetails {
	link = normalize(link, videoID)
	ctx = begin(ctx, "details", link)
	defer guard(ctx, "details")

	result, err := a.firstResult(ctx, link)
	if err != nil {
		utils.LogError(ctx, "Error fetching details", err, utils.Fields{"link": link})
		return nil
	}

	seconds, err := utils.ClockToSeconds(result.Duration)
	if err != nil {
		utils.LogWarn(ctx, "Unparseable duration", utils.Fields{
			"link":     link,
			"duration": result.Duration,
		})
		seconds = 0
	}

	return &models.VideoDetails{
		Title:       result.Title,
		DurationMin: result.Duration,
		DurationSec: seconds,
		Thumbnail:   result.Thumbnail,
		VideoID:     result.ID,
	}
}

func (a *Adapter) Title(ctx context.Context, link string, videoID bool) string {
	link = normalize(link, videoID)
	ctx = begin(ctx, "title", link)
	defer guard(ctx, "title")

	result, err := a.firstResult(ctx, link)
	if err != nil {
		utils.LogError(ctx, "Error fetching title", err, utils.Fields{"link": link})
		return ""
	}
	return result.Title
}

// Duration returns the clock-style duration ("4:13"), or "".
func (a *Adapter) Duration(ctx context.Context, link string, videoID bool) string {
	link = normalize(link, videoID)
	ctx = begin(ctx, "duration", link)
	defer guard(ctx, "duration")

	result, err := a.firstResult(ctx, link)
	if err != nil {
		utils.LogError(ctx, "Error fetching duration", err, utils.Fields{"link": link})
		return ""
	}
	return result.Duration
}

func (a *Adapter) Thumbnail(ctx context.Context, link string, videoID bool) string {
	link = normalize(link, videoID)
	ctx = begin(ctx, "thumbnail", link)
	defer guard(ctx, "thumbnail")

	result, err := a.firstResult(ctx, link)
	if err != nil {
		utils.LogError(ctx, "Error fetching thumbnail", err, utils.Fields{"link": link})
		return ""
	}
	return result.Thumbnail
}

// Track returns queue-ready details and the video id, or (nil, "").
func (a *Adapter) Track(ctx context.Context, link string, videoID bool) (*models.TrackDetails, string) {
	link = normalize(link, videoID)
	ctx = begin(ctx, "track", link)
	defer guard(ctx, "track")

	result, err := a.firstResult(ctx, link)
	if err != nil {
		utils.LogError(ctx, "Error fetching track", err, utils.Fields{"link": link})
		return nil, ""
	}

	return &models.TrackDetails{
		Title:       result.Title,
		Link:        result.Link,
		VideoID:     result.ID,
		DurationMin: result.Duration,
		Thumbnail:   result.Thumbnail,
	}, result.ID
}

// Slider picks the index-th of the top search results for link. It returns
// nil when index is out of range.
func (a *Adapter) Slider(ctx context.Context, link string, index int, videoID bool) *models.SliderItem {
	link = normalize(link, videoID)
	ctx = begin(ctx, "slider", link)
	defer guard(ctx, "slider")

	if index < 0 {
		utils.LogWarn(ctx, "Negative slider index", utils.Fields{"index": index})
		return nil
	}

	results, err := a.searcher.Search(ctx, link, sliderSearchLimit)
	if err != nil {
		utils.LogError(ctx, "Error fetching slider data", err, utils.Fields{"link": link})
		return nil
	}
	if index >= len(results) {
		utils.LogDebug(ctx, "Slider index out of range", utils.Fields{
			"index":   index,
			"results": len(results),
		})
		return nil
	}

	item := results[index]
	return &models.SliderItem{
		Title:       item.Title,
		DurationMin: item.Duration,
		Thumbnail:   item.Thumbnail,
		VideoID:     item.ID,
	}
}

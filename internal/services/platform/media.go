package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// Video resolves a direct stream URL. On failure the second value carries
// the tool's reason instead of a URL.
func (a *Adapter) Video(ctx context.Context, link string, videoID bool) (ok bool, result string) {
	link = normalize(link, videoID)
	ctx = begin(ctx, "video", link)
	defer guard(ctx, "video")

	cctx, cancel := a.withTimeout(ctx)
	defer cancel()

	url, err := a.tool.StreamURL(cctx, link)
	if err != nil {
		utils.LogWarn(ctx, "Stream URL resolution failed", utils.Fields{
			"link":  link,
			"error": err.Error(),
		})
		return false, execMessage(err)
	}
	return true, url
}

// Playlist lists up to limit member video ids in playlist order. Any
// failure yields an empty slice.
func (a *Adapter) Playlist(ctx context.Context, link string, limit int, videoID bool) (ids []string) {
	link = normalizePlaylist(link, videoID)
	ctx = begin(ctx, "playlist", link)
	ids = []string{}
	defer guard(ctx, "playlist")

	if limit < 1 {
		utils.LogWarn(ctx, "Playlist limit must be positive", utils.Fields{"limit": limit})
		return ids
	}
	if limit > MaxPlaylistLimit {
		utils.LogDebug(ctx, "Playlist limit clamped", utils.Fields{"limit": limit, "max": MaxPlaylistLimit})
		limit = MaxPlaylistLimit
	}

	cctx, cancel := a.withTimeout(ctx)
	defer cancel()

	listed, err := a.tool.PlaylistIDs(cctx, link, limit)
	if err != nil {
		utils.LogError(ctx, "Error listing playlist", err, utils.Fields{"link": link})
		return ids
	}
	if len(listed) > limit {
		listed = listed[:limit]
	}
	return append(ids, listed...)
}

// Formats lists the non-DASH encodings offered for a video together with
// the normalized link. Entries missing a label or extension are skipped.
func (a *Adapter) Formats(ctx context.Context, link string, videoID bool) (formats []models.FormatDescriptor, normalized string) {
	link = normalize(link, videoID)
	ctx = begin(ctx, "formats", link)
	formats, normalized = []models.FormatDescriptor{}, link
	defer guard(ctx, "formats")

	cctx, cancel := a.withTimeout(ctx)
	defer cancel()

	info, err := a.tool.GetInfo(cctx, link)
	if err != nil {
		utils.LogError(ctx, "Error fetching formats", err, utils.Fields{"link": link})
		return formats, link
	}

	for _, raw := range info.Formats {
		label, ok := stringField(raw, "format")
		if !ok || strings.Contains(strings.ToLower(label), "dash") {
			continue
		}
		ext, ok := stringField(raw, "ext")
		if !ok {
			continue
		}

		desc := models.FormatDescriptor{
			Format: label,
			Ext:    ext,
			Link:   link,
		}
		desc.FormatID, _ = stringField(raw, "format_id")
		if size, ok := raw["filesize"].(float64); ok {
			v := int64(size)
			desc.Filesize = &v
		}
		if note, ok := stringField(raw, "format_note"); ok {
			desc.FormatNote = &note
		}
		formats = append(formats, desc)
	}

	return formats, link
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Dispatch answers a query by its type: a stream URL for "video", member
// ids for "playlist" and the canonical watch URL of the first hit for "url".
func (a *Adapter) Dispatch(ctx context.Context, link string, queryType models.QueryType, videoID bool) (*models.DispatchResult, error) {
	ctx = utils.EnsureCorrelationID(ctx)

	switch queryType {
	case models.QueryTypeVideo:
		ok, result := a.Video(ctx, link, videoID)
		if !ok {
			return nil, utils.NewUnavailableError(link)
		}
		return &models.DispatchResult{QueryType: queryType, URL: result}, nil

	case models.QueryTypePlaylist:
		ids := a.Playlist(ctx, link, a.playlistLimit, videoID)
		if len(ids) == 0 {
			return nil, utils.NewUnavailableError(link)
		}
		return &models.DispatchResult{QueryType: queryType, VideoIDs: ids}, nil

	case models.QueryTypeURL:
		track, vidid := a.Track(ctx, link, videoID)
		if track == nil || vidid == "" {
			return nil, utils.NewUnavailableError(link)
		}
		return &models.DispatchResult{QueryType: queryType, URL: VideoBase + vidid}, nil

	default:
		err := utils.NewUnknownQueryTypeError(string(queryType))
		utils.LogWarn(ctx, "Unknown query type", utils.Fields{
			"query_type": string(queryType),
		})
		return nil, err
	}
}

// IsUnknownQueryType reports whether err came from Dispatch rejecting its
// query type.
func IsUnknownQueryType(err error) bool {
	var appErr *utils.AppError
	return errors.As(err, &appErr) && appErr.Code == utils.ErrorCodeUnknownQueryType
}

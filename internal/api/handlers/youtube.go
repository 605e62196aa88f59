package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

// Platform is the adapter surface served over HTTP.
type Platform interface {
	Exists(link string, videoID bool) bool
	URL(msg *tgbotapi.Message) string
	Details(ctx context.Context, link string, videoID bool) *models.VideoDetails
	Title(ctx context.Context, link string, videoID bool) string
	Duration(ctx context.Context, link string, videoID bool) string
	Thumbnail(ctx context.Context, link string, videoID bool) string
	Video(ctx context.Context, link string, videoID bool) (bool, string)
	Playlist(ctx context.Context, link string, limit int, videoID bool) []string
	Track(ctx context.Context, link string, videoID bool) (*models.TrackDetails, string)
	Formats(ctx context.Context, link string, videoID bool) ([]models.FormatDescriptor, string)
	Slider(ctx context.Context, link string, index int, videoID bool) *models.SliderItem
	Dispatch(ctx context.Context, link string, queryType models.QueryType, videoID bool) (*models.DispatchResult, error)
	Download(ctx context.Context, req models.DownloadRequest) *models.DownloadResult
}

type YouTubeHandler struct {
	platform Platform
}

func NewYouTubeHandler(platform Platform) *YouTubeHandler {
	return &YouTubeHandler{platform: platform}
}

// Exists godoc
// @Summary Check a YouTube link
// @Description Reports whether the link (or bare video id) points at YouTube
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.ExistsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/exists [post]
func (h *YouTubeHandler) Exists(c *gin.Context) {
	var req models.LinkRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, models.ExistsResponse{
		Link:   req.Link,
		Exists: h.platform.Exists(req.Link, req.VideoID),
	})
}

// URL godoc
// @Summary Extract a link from a message
// @Description Returns the first link in a Bot API message or the message it replies to
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body tgbotapi.Message true "Request"
// @Success 200 {object} models.URLResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/url [post]
func (h *YouTubeHandler) URL(c *gin.Context) {
	var msg tgbotapi.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		errorResponse(c, utils.NewValidationError("Invalid message body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	c.JSON(http.StatusOK, models.URLResponse{URL: h.platform.URL(&msg)})
}

// Details godoc
// @Summary Get video details
// @Description Title, duration, thumbnail and id of the first search hit
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.VideoDetails
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/details [post]
func (h *YouTubeHandler) Details(c *gin.Context) {
	var req models.LinkRequest
	if !bindJSON(c, &req) {
		return
	}

	details := h.platform.Details(c.Request.Context(), req.Link, req.VideoID)
	if details == nil {
		errorResponse(c, utils.NewUnavailableError(req.Link))
		return
	}
	c.JSON(http.StatusOK, details)
}

// Title godoc
// @Summary Get video title
// @Description Title of the first search hit
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.ValueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/title [post]
func (h *YouTubeHandler) Title(c *gin.Context) {
	h.value(c, h.platform.Title)
}

// Duration godoc
// @Summary Get video duration
// @Description Clock-formatted duration of the first search hit
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.ValueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/duration [post]
func (h *YouTubeHandler) Duration(c *gin.Context) {
	h.value(c, h.platform.Duration)
}

// Thumbnail godoc
// @Summary Get video thumbnail
// @Description Thumbnail URL of the first search hit
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.ValueResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/thumbnail [post]
func (h *YouTubeHandler) Thumbnail(c *gin.Context) {
	h.value(c, h.platform.Thumbnail)
}

func (h *YouTubeHandler) value(c *gin.Context, lookup func(context.Context, string, bool) string) {
	var req models.LinkRequest
	if !bindJSON(c, &req) {
		return
	}

	value := lookup(c.Request.Context(), req.Link, req.VideoID)
	if value == "" {
		errorResponse(c, utils.NewUnavailableError(req.Link))
		return
	}
	c.JSON(http.StatusOK, models.ValueResponse{Value: value})
}

// Video godoc
// @Summary Resolve a stream URL
// @Description Resolves a direct stream URL capped at 720p. Failures carry status 0 and the tool's reason
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.VideoResponse
// @Failure 502 {object} models.VideoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/video [post]
func (h *YouTubeHandler) Video(c *gin.Context) {
	var req models.LinkRequest
	if !bindJSON(c, &req) || !h.requireYouTube(c, req.Link, req.VideoID) {
		return
	}

	ok, result := h.platform.Video(c.Request.Context(), req.Link, req.VideoID)
	if !ok {
		c.JSON(http.StatusBadGateway, models.VideoResponse{Status: 0, Error: result})
		return
	}
	c.JSON(http.StatusOK, models.VideoResponse{Status: 1, URL: result})
}

// Playlist godoc
// @Summary List playlist members
// @Description Lists up to limit video ids in playlist order
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.PlaylistRequest true "Request"
// @Success 200 {object} models.PlaylistResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/playlist [post]
func (h *YouTubeHandler) Playlist(c *gin.Context) {
	var req models.PlaylistRequest
	if !bindJSON(c, &req) || !h.requireYouTube(c, req.Link, req.VideoID) {
		return
	}

	ids := h.platform.Playlist(c.Request.Context(), req.Link, req.Limit, req.VideoID)
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, models.PlaylistResponse{VideoIDs: ids})
}

// Track godoc
// @Summary Get track details
// @Description Track details and video id of the first search hit
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.TrackResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/track [post]
func (h *YouTubeHandler) Track(c *gin.Context) {
	var req models.LinkRequest
	if !bindJSON(c, &req) {
		return
	}

	track, vidid := h.platform.Track(c.Request.Context(), req.Link, req.VideoID)
	if track == nil {
		errorResponse(c, utils.NewUnavailableError(req.Link))
		return
	}
	c.JSON(http.StatusOK, models.TrackResponse{Track: track, VideoID: vidid})
}

// Formats godoc
// @Summary List encoding formats
// @Description Lists the non-DASH formats offered for a video
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.LinkRequest true "Request"
// @Success 200 {object} models.FormatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/formats [post]
func (h *YouTubeHandler) Formats(c *gin.Context) {
	var req models.LinkRequest
	if !bindJSON(c, &req) || !h.requireYouTube(c, req.Link, req.VideoID) {
		return
	}

	formats, link := h.platform.Formats(c.Request.Context(), req.Link, req.VideoID)

	items := make([]models.FormatItem, len(formats))
	for i, f := range formats {
		items[i] = models.FormatItem{FormatDescriptor: f}
		if f.Filesize != nil && *f.Filesize > 0 {
			items[i].FilesizeHuman = humanize.Bytes(uint64(*f.Filesize))
		}
	}

	c.JSON(http.StatusOK, models.FormatsResponse{Formats: items, Link: link})
}

// Slider godoc
// @Summary Pick a search result
// @Description Returns the search result at the given position out of ten
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.SliderRequest true "Request"
// @Success 200 {object} models.SliderItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/slider [post]
func (h *YouTubeHandler) Slider(c *gin.Context) {
	var req models.SliderRequest
	if !bindJSON(c, &req) {
		return
	}

	item := h.platform.Slider(c.Request.Context(), req.Link, req.Index, req.VideoID)
	if item == nil {
		errorResponse(c, utils.NewErrorWithDetails(
			utils.ErrorCodeMediaUnavailable,
			"No search result at that position",
			http.StatusNotFound,
			map[string]interface{}{"link": req.Link, "index": req.Index},
		))
		return
	}
	c.JSON(http.StatusOK, item)
}

// Dispatch godoc
// @Summary Resolve by query type
// @Description Resolves a stream URL, playlist ids or a watch URL depending on query_type
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.DispatchRequest true "Request"
// @Success 200 {object} models.DispatchResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/dispatch [post]
func (h *YouTubeHandler) Dispatch(c *gin.Context) {
	var req models.DispatchRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.platform.Dispatch(c.Request.Context(), req.Link, req.QueryType, req.VideoID)
	if err != nil {
		var appErr *utils.AppError
		if !errors.As(err, &appErr) {
			utils.LogError(c.Request.Context(), "Dispatch failed", err)
			appErr = utils.NewInternalError()
		}
		errorResponse(c, appErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Download godoc
// @Summary Download media
// @Description Downloads audio, video or a song format. Video mode may answer with a stream URL and direct=false
// @Tags YouTube
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body models.DownloadRequest true "Request"
// @Success 200 {object} models.DownloadResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/youtube/download [post]
func (h *YouTubeHandler) Download(c *gin.Context) {
	var req models.DownloadRequest
	if !bindJSON(c, &req) || !h.requireYouTube(c, req.Link, req.VideoID) {
		return
	}

	switch req.Mode {
	case "", models.DownloadModeAudio, models.DownloadModeVideo:
	case models.DownloadModeSongAudio, models.DownloadModeSongVideo:
		if req.Title == "" {
			errorResponse(c, utils.NewValidationError("Title is required for song downloads", map[string]interface{}{
				"mode": req.Mode,
			}))
			return
		}
	default:
		errorResponse(c, utils.NewValidationError("Unknown download mode", map[string]interface{}{
			"mode":    req.Mode,
			"allowed": []models.DownloadMode{models.DownloadModeAudio, models.DownloadModeVideo, models.DownloadModeSongAudio, models.DownloadModeSongVideo},
		}))
		return
	}

	result := h.platform.Download(c.Request.Context(), req)
	if result == nil {
		errorResponse(c, utils.NewDownloadError(req.Link, ""))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *YouTubeHandler) requireYouTube(c *gin.Context, link string, videoID bool) bool {
	if !h.platform.Exists(link, videoID) {
		errorResponse(c, utils.NewInvalidLinkError(link))
		return false
	}
	return true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		errorResponse(c, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return false
	}
	return true
}

// ErrorResponse is the body of every non-2xx answer except a failed video
// resolution.
type ErrorResponse struct {
	Error     *utils.AppError `json:"error"`
	RequestID string          `json:"request_id"`
	Timestamp string          `json:"timestamp"`
}

func errorResponse(c *gin.Context, err *utils.AppError) {
	c.JSON(err.StatusCode, ErrorResponse{
		Error:     err,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

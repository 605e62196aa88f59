package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePlatform struct {
	exists    bool
	url       string
	details   *models.VideoDetails
	value     string
	videoOK   bool
	video     string
	ids       []string
	track     *models.TrackDetails
	formats   []models.FormatDescriptor
	slider    *models.SliderItem
	dispatch  *models.DispatchResult
	dispatchE error
	download  *models.DownloadResult

	lastLimit    int
	lastDownload models.DownloadRequest
}

func (f *fakePlatform) Exists(link string, videoID bool) bool { return f.exists }
func (f *fakePlatform) URL(msg *tgbotapi.Message) string      { return f.url }
func (f *fakePlatform) Details(ctx context.Context, link string, videoID bool) *models.VideoDetails {
	return f.details
}
func (f *fakePlatform) Title(ctx context.Context, link string, videoID bool) string     { return f.value }
func (f *fakePlatform) Duration(ctx context.Context, link string, videoID bool) string  { return f.value }
func (f *fakePlatform) Thumbnail(ctx context.Context, link string, videoID bool) string { return f.value }
func (f *fakePlatform) Video(ctx context.Context, link string, videoID bool) (bool, string) {
	return f.videoOK, f.video
}
func (f *fakePlatform) Playlist(ctx context.Context, link string, limit int, videoID bool) []string {
	f.lastLimit = limit
	return f.ids
}
func (f *fakePlatform) Track(ctx context.Context, link string, videoID bool) (*models.TrackDetails, string) {
	if f.track == nil {
		return nil, ""
	}
	return f.track, f.track.VideoID
}
func (f *fakePlatform) Formats(ctx context.Context, link string, videoID bool) ([]models.FormatDescriptor, string) {
	return f.formats, "https://www.youtube.com/watch?v=abc"
}
func (f *fakePlatform) Slider(ctx context.Context, link string, index int, videoID bool) *models.SliderItem {
	return f.slider
}
func (f *fakePlatform) Dispatch(ctx context.Context, link string, queryType models.QueryType, videoID bool) (*models.DispatchResult, error) {
	return f.dispatch, f.dispatchE
}
func (f *fakePlatform) Download(ctx context.Context, req models.DownloadRequest) *models.DownloadResult {
	f.lastDownload = req
	return f.download
}

func serve(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	engine := gin.New()
	engine.POST("/", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorCode {
	t.Helper()
	var body struct {
		Error utils.AppError `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func TestExists(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{exists: true})

	w := serve(t, h.Exists, `{"link":"https://youtu.be/abc"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ExistsResponse
	decode(t, w, &resp)
	assert.True(t, resp.Exists)

	w = serve(t, h.Exists, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.ErrorCodeValidationError, errorCode(t, w))
}

func TestURL_AcceptsBotAPIMessage(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{url: "https://youtu.be/abc"})

	msg := tgbotapi.Message{
		Text:     "https://youtu.be/abc",
		Entities: []tgbotapi.MessageEntity{{Type: "url", Offset: 0, Length: 20}},
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	w := serve(t, h.URL, string(body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.URLResponse
	decode(t, w, &resp)
	assert.Equal(t, "https://youtu.be/abc", resp.URL)
}

func TestDetails(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{details: &models.VideoDetails{Title: "t", DurationSec: 10, VideoID: "abc"}})
	w := serve(t, h.Details, `{"link":"abc","video_id":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"vidid":"abc"`)

	h = NewYouTubeHandler(&fakePlatform{})
	w = serve(t, h.Details, `{"link":"abc","video_id":true}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, utils.ErrorCodeMediaUnavailable, errorCode(t, w))
}

func TestValueEndpoints(t *testing.T) {
	ok := NewYouTubeHandler(&fakePlatform{value: "3:33"})
	empty := NewYouTubeHandler(&fakePlatform{})

	for name, pair := range map[string][2]gin.HandlerFunc{
		"title":     {ok.Title, empty.Title},
		"duration":  {ok.Duration, empty.Duration},
		"thumbnail": {ok.Thumbnail, empty.Thumbnail},
	} {
		t.Run(name, func(t *testing.T) {
			w := serve(t, pair[0], `{"link":"abc"}`)
			require.Equal(t, http.StatusOK, w.Code)
			var resp models.ValueResponse
			decode(t, w, &resp)
			assert.Equal(t, "3:33", resp.Value)

			w = serve(t, pair[1], `{"link":"abc"}`)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestVideo(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{exists: true, videoOK: true, video: "https://rr1.googlevideo.com/x"})
	w := serve(t, h.Video, `{"link":"abc","video_id":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.VideoResponse
	decode(t, w, &resp)
	assert.Equal(t, 1, resp.Status)
	assert.Equal(t, "https://rr1.googlevideo.com/x", resp.URL)

	h = NewYouTubeHandler(&fakePlatform{exists: true, video: "ERROR: Video unavailable"})
	w = serve(t, h.Video, `{"link":"abc","video_id":true}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, "ERROR: Video unavailable", resp.Error)

	h = NewYouTubeHandler(&fakePlatform{exists: false})
	w = serve(t, h.Video, `{"link":"https://vimeo.com/1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.ErrorCodeInvalidLinkFormat, errorCode(t, w))
}

func TestPlaylist(t *testing.T) {
	p := &fakePlatform{exists: true}
	h := NewYouTubeHandler(p)

	w := serve(t, h.Playlist, `{"link":"PL1","limit":3,"video_id":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, p.lastLimit)
	assert.JSONEq(t, `{"video_ids":[]}`, w.Body.String())

	w = serve(t, h.Playlist, `{"link":"PL1","limit":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	p.lastLimit = 0
	w = serve(t, h.Playlist, `{"link":"PL1","limit":68719476736,"video_id":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, p.lastLimit)

	var resp ErrorResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, utils.ErrorCodeValidationError, resp.Error.Code)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestTrack(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{track: &models.TrackDetails{Title: "t", VideoID: "abc"}})
	w := serve(t, h.Track, `{"link":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrackResponse
	decode(t, w, &resp)
	assert.Equal(t, "abc", resp.VideoID)
	assert.Equal(t, "t", resp.Track.Title)
}

func TestFormats_AddsHumanSizes(t *testing.T) {
	size := int64(3456789)
	h := NewYouTubeHandler(&fakePlatform{exists: true, formats: []models.FormatDescriptor{
		{Format: "140 - audio only", FormatID: "140", Ext: "m4a", Filesize: &size},
		{Format: "22 - 720p", FormatID: "22", Ext: "mp4"},
	}})

	w := serve(t, h.Formats, `{"link":"abc","video_id":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FormatsResponse
	decode(t, w, &resp)
	require.Len(t, resp.Formats, 2)
	assert.Equal(t, "3.5 MB", resp.Formats[0].FilesizeHuman)
	assert.Empty(t, resp.Formats[1].FilesizeHuman)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", resp.Link)
}

func TestSlider(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{slider: &models.SliderItem{VideoID: "abc"}})
	w := serve(t, h.Slider, `{"link":"query","index":0}`)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewYouTubeHandler(&fakePlatform{})
	w = serve(t, h.Slider, `{"link":"query","index":11}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDispatch(t *testing.T) {
	h := NewYouTubeHandler(&fakePlatform{dispatch: &models.DispatchResult{QueryType: models.QueryTypeURL, URL: "https://www.youtube.com/watch?v=abc"}})
	w := serve(t, h.Dispatch, `{"link":"abc","query_type":"url"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewYouTubeHandler(&fakePlatform{dispatchE: utils.NewUnknownQueryTypeError("lyrics")})
	w = serve(t, h.Dispatch, `{"link":"abc","query_type":"lyrics"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.ErrorCodeUnknownQueryType, errorCode(t, w))

	h = NewYouTubeHandler(&fakePlatform{dispatchE: errors.New("boom")})
	w = serve(t, h.Dispatch, `{"link":"abc","query_type":"video"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDownload(t *testing.T) {
	p := &fakePlatform{exists: true, download: &models.DownloadResult{Path: "https://rr1.googlevideo.com/x", Direct: false}}
	h := NewYouTubeHandler(p)

	w := serve(t, h.Download, `{"link":"abc","video_id":true,"mode":"video"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":"https://rr1.googlevideo.com/x","direct":false}`, w.Body.String())
	assert.Equal(t, models.DownloadModeVideo, p.lastDownload.Mode)

	w = serve(t, h.Download, `{"link":"abc","video_id":true,"mode":"song_audio","format_id":"251"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, h.Download, `{"link":"abc","video_id":true,"mode":"karaoke"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewYouTubeHandler(&fakePlatform{exists: true})
	w = serve(t, h.Download, `{"link":"abc","video_id":true}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, utils.ErrorCodeDownloadFailed, errorCode(t, w))
}

type fakeTool struct{ err error }

func (f fakeTool) Version(ctx context.Context) (string, error) { return "2025.01.01", f.err }

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	get := func(handler gin.HandlerFunc) *httptest.ResponseRecorder {
		engine := gin.New()
		engine.GET("/", handler)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", bytes.NewReader(nil)))
		return w
	}

	healthy := NewHealthHandler(fakeTool{}, fakePinger{}, "1.0.0")
	w := get(healthy.Health)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "2025.01.01", resp.Services["ytdlp"].Version)

	degraded := NewHealthHandler(fakeTool{}, fakePinger{err: errors.New("mongo down")}, "1.0.0")
	assert.Equal(t, http.StatusServiceUnavailable, get(degraded.Health).Code)
	assert.Equal(t, http.StatusOK, get(degraded.Readiness).Code)

	broken := NewHealthHandler(fakeTool{err: errors.New("not found")}, fakePinger{}, "1.0.0")
	assert.Equal(t, http.StatusServiceUnavailable, get(broken.Readiness).Code)
	assert.Equal(t, http.StatusOK, get(broken.Liveness).Code)
}

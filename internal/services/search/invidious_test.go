package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisAlshanov/ytplatform/internal/config"
)

const searchFixture = `[
  {"type":"channel","author":"Someone"},
  {"type":"video","title":"First","videoId":"aaaaaaaaaaa","lengthSeconds":253,
   "videoThumbnails":[{"quality":"maxres","url":"https://i.ytimg.com/vi/aaaaaaaaaaa/maxres.jpg?sqp=x","width":1280,"height":720}]},
  {"type":"video","title":"Second","videoId":"bbbbbbbbbbb","lengthSeconds":3723,
   "videoThumbnails":[{"quality":"high","url":"/vi/bbbbbbbbbbb/hqdefault.jpg","width":480,"height":360}]},
  {"type":"video","title":"Live","videoId":"ccccccccccc","lengthSeconds":0,"liveNow":true}
]`

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestInvidiousSearch_MapsResults(t *testing.T) {
	srv, req := newTestServer(t, http.StatusOK, searchFixture)
	client := NewInvidiousClient(&config.SearchConfig{InvidiousURL: srv.URL + "/", Timeout: time.Second})

	results, err := client.Search(context.Background(), "never gonna", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "/api/v1/search", req.URL.Path)
	assert.Equal(t, "never gonna", req.URL.Query().Get("q"))
	assert.Equal(t, "video", req.URL.Query().Get("type"))

	assert.Equal(t, "aaaaaaaaaaa", results[0].ID)
	assert.Equal(t, "4:13", results[0].Duration)
	assert.Equal(t, "https://www.youtube.com/watch?v=aaaaaaaaaaa", results[0].Link)
	assert.Equal(t, "https://i.ytimg.com/vi/aaaaaaaaaaa/maxres.jpg", results[0].Thumbnail)

	assert.Equal(t, "1:02:03", results[1].Duration)
	assert.Equal(t, srv.URL+"/vi/bbbbbbbbbbb/hqdefault.jpg", results[1].Thumbnail)

	assert.Empty(t, results[2].Duration)
	assert.Empty(t, results[2].Thumbnail)
}

func TestInvidiousSearch_RespectsLimit(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, searchFixture)
	client := NewInvidiousClient(&config.SearchConfig{InvidiousURL: srv.URL})

	results, err := client.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "First", results[0].Title)
}

func TestInvidiousSearch_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		query  string
	}{
		{name: "Bad status", status: http.StatusServiceUnavailable, body: "", query: "x"},
		{name: "Bad body", status: http.StatusOK, body: "<html>", query: "x"},
		{name: "Empty query", status: http.StatusOK, body: "[]", query: "  "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tc.status, tc.body)
			client := NewInvidiousClient(&config.SearchConfig{InvidiousURL: srv.URL, Timeout: time.Second})

			_, err := client.Search(context.Background(), tc.query, 1)
			assert.Error(t, err)
		})
	}
}

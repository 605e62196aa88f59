package models

// SearchResult is a single hit returned by a search backend.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

// VideoDetails is the metadata tuple returned by Adapter.Details.
type VideoDetails struct {
	Title       string `json:"title"`
	DurationMin string `json:"duration_min"`
	DurationSec int    `json:"duration_sec"`
	Thumbnail   string `json:"thumbnail"`
	VideoID     string `json:"vidid"`
}

// TrackDetails is shaped for queueing and playback.
type TrackDetails struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	VideoID     string `json:"vidid"`
	DurationMin string `json:"duration_min"`
	Thumbnail   string `json:"thumb"`
}

type SliderItem struct {
	Title       string `json:"title"`
	DurationMin string `json:"duration_min"`
	Thumbnail   string `json:"thumb"`
	VideoID     string `json:"vidid"`
}

// FormatDescriptor describes one non-DASH encoding offered for a video.
type FormatDescriptor struct {
	Format     string  `json:"format"`
	Filesize   *int64  `json:"filesize"`
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	FormatNote *string `json:"format_note"`
	Link       string  `json:"yturl"`
}

type DownloadMode string

const (
	DownloadModeAudio     DownloadMode = "audio"
	DownloadModeVideo     DownloadMode = "video"
	DownloadModeSongAudio DownloadMode = "song_audio"
	DownloadModeSongVideo DownloadMode = "song_video"
)

type DownloadRequest struct {
	Link     string       `json:"link" binding:"required"`
	VideoID  bool         `json:"video_id"`
	Mode     DownloadMode `json:"mode"`
	FormatID string       `json:"format_id"`
	Title    string       `json:"title"`
}

// DownloadResult carries either a local file (Direct) or a remote stream URL.
type DownloadResult struct {
	Path   string `json:"path"`
	Direct bool   `json:"direct"`
}

type QueryType string

const (
	QueryTypeVideo    QueryType = "video"
	QueryTypePlaylist QueryType = "playlist"
	QueryTypeURL      QueryType = "url"
)

type DispatchResult struct {
	QueryType QueryType `json:"query_type"`
	URL       string    `json:"url,omitempty"`
	VideoIDs  []string  `json:"video_ids,omitempty"`
}

// Request bodies accepted by the HTTP surface.

type LinkRequest struct {
	Link    string `json:"link" binding:"required"`
	VideoID bool   `json:"video_id"`
}

type PlaylistRequest struct {
	Link    string `json:"link" binding:"required"`
	Limit   int    `json:"limit" binding:"required,min=1,max=1000"`
	VideoID bool   `json:"video_id"`
}

type SliderRequest struct {
	Link    string `json:"link" binding:"required"`
	Index   int    `json:"index" binding:"min=0"`
	VideoID bool   `json:"video_id"`
}

type DispatchRequest struct {
	Link      string    `json:"link" binding:"required"`
	QueryType QueryType `json:"query_type" binding:"required"`
	VideoID   bool      `json:"video_id"`
}

// Response bodies.

type ExistsResponse struct {
	Link   string `json:"link"`
	Exists bool   `json:"exists"`
}

type URLResponse struct {
	URL string `json:"url"`
}

type ValueResponse struct {
	Value string `json:"value"`
}

type VideoResponse struct {
	Status int    `json:"status"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

type PlaylistResponse struct {
	VideoIDs []string `json:"video_ids"`
}

type TrackResponse struct {
	Track   *TrackDetails `json:"track"`
	VideoID string        `json:"vidid"`
}

type FormatItem struct {
	FormatDescriptor
	FilesizeHuman string `json:"filesize_human,omitempty"`
}

type FormatsResponse struct {
	Formats []FormatItem `json:"formats"`
	Link    string       `json:"link"`
}

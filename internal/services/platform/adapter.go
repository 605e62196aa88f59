// Package platform is the YouTube façade used by the chat bot: metadata
// lookups, stream resolution, format listing and downloads, all delegated
// to yt-dlp and a search backend.
//
// Public methods never return panics or raw failures to the caller. Every
// failure is logged and turned into a sentinel (nil, "", false or an empty
// slice) that callers treat as "unavailable now".
package platform

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/afero"

	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/services/search"
	"github.com/denisAlshanov/ytplatform/internal/services/worker"
	"github.com/denisAlshanov/ytplatform/internal/services/ytdlp"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

const (
	VideoBase    = "https://www.youtube.com/watch?v="
	PlaylistBase = "https://youtube.com/playlist?list="

	// MaxPlaylistLimit caps how many ids a single playlist listing returns.
	MaxPlaylistLimit = 1000

	defaultDownloadsDir = "downloads"
)

var domainPattern = regexp.MustCompile(`(?:youtube\.com|youtu\.be)`)

var errNoResults = errors.New("search returned no results")

// MediaTool is the subset of the yt-dlp client the adapter drives.
type MediaTool interface {
	StreamURL(ctx context.Context, link string) (string, error)
	PlaylistIDs(ctx context.Context, link string, limit int) ([]string, error)
	GetInfo(ctx context.Context, link string, extraArgs ...string) (*ytdlp.Info, error)
	Download(ctx context.Context, link string, opts ytdlp.DownloadOptions) error
}

// FlagStore answers feature flag lookups.
type FlagStore interface {
	IsOn(ctx context.Context, flag int) (bool, error)
}

type Adapter struct {
	tool          MediaTool
	searcher      search.Searcher
	flags         FlagStore
	executor      worker.Executor
	fs            afero.Fs
	downloadsDir  string
	timeout       time.Duration
	playlistLimit int
}

type Option func(*Adapter)

// WithFs replaces the filesystem used for the downloads existence check.
func WithFs(fs afero.Fs) Option {
	return func(a *Adapter) {
		a.fs = fs
	}
}

func NewAdapter(tool MediaTool, searcher search.Searcher, flags FlagStore, executor worker.Executor, cfg *config.PlatformConfig, opts ...Option) *Adapter {
	a := &Adapter{
		tool:          tool,
		searcher:      searcher,
		flags:         flags,
		executor:      executor,
		fs:            afero.NewOsFs(),
		downloadsDir:  cfg.DownloadsDir,
		timeout:       cfg.CommandTimeout,
		playlistLimit: cfg.PlaylistLimit,
	}
	if a.downloadsDir == "" {
		a.downloadsDir = defaultDownloadsDir
	}
	a.playlistLimit = min(a.playlistLimit, MaxPlaylistLimit)
	if a.executor == nil {
		a.executor = worker.Inline{}
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Exists reports whether link points at YouTube. Links that yt-dlp would
// read as an option are rejected.
func (a *Adapter) Exists(link string, videoID bool) bool {
	if videoID {
		link = VideoBase + link
	}
	if strings.HasPrefix(strings.TrimSpace(link), "-") {
		return false
	}
	return domainPattern.MatchString(link)
}

// URL returns the first link found in msg or, failing that, in the message
// it replies to. It returns "" when neither carries one.
func (a *Adapter) URL(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}

	messages := []*tgbotapi.Message{msg}
	if msg.ReplyToMessage != nil {
		messages = append(messages, msg.ReplyToMessage)
	}

	for _, m := range messages {
		if link, ok := linkFromMessage(m); ok {
			return link
		}
	}
	return ""
}

func linkFromMessage(m *tgbotapi.Message) (string, bool) {
	if len(m.Entities) > 0 {
		text := m.Text
		if text == "" {
			text = m.Caption
		}
		for _, entity := range m.Entities {
			if entity.Type == "url" {
				return sliceUTF16(text, entity.Offset, entity.Length)
			}
		}
		return "", false
	}

	for _, entity := range m.CaptionEntities {
		if entity.Type == "text_link" {
			return entity.URL, true
		}
	}
	return "", false
}

// sliceUTF16 cuts text using Telegram's UTF-16 code unit offsets.
func sliceUTF16(text string, offset, length int) (string, bool) {
	units := utf16.Encode([]rune(text))
	if offset < 0 || length < 0 || offset+length > len(units) {
		return "", false
	}
	return string(utf16.Decode(units[offset : offset+length])), true
}

// normalize expands bare video ids and drops everything after the first '&'.
func normalize(link string, videoID bool) string {
	if videoID {
		link = VideoBase + link
	}
	return trimParams(link)
}

func normalizePlaylist(link string, videoID bool) string {
	if videoID {
		link = PlaylistBase + link
	}
	return trimParams(link)
}

func trimParams(link string) string {
	if i := strings.Index(link, "&"); i >= 0 {
		return link[:i]
	}
	return link
}

// begin tags ctx with a correlation id for the duration of one operation.
func begin(ctx context.Context, op string, link string) context.Context {
	ctx = utils.EnsureCorrelationID(ctx)
	utils.LogDebug(ctx, "YouTube operation started", utils.Fields{
		"operation": op,
		"link":      link,
	})
	return ctx
}

// guard converts a panic in a collaborator into a logged failure. It must be
// deferred directly.
func guard(ctx context.Context, op string) {
	if r := recover(); r != nil {
		utils.LogError(ctx, "YouTube operation panicked", fmt.Errorf("panic: %v", r), utils.Fields{
			"operation": op,
		})
	}
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// firstResult runs a single-result search for link.
func (a *Adapter) firstResult(ctx context.Context, link string) (*models.SearchResult, error) {
	results, err := a.searcher.Search(ctx, link, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errNoResults
	}
	return &results[0], nil
}

// execMessage extracts the reason to hand back to callers from a tool error.
func execMessage(err error) string {
	var ee *ytdlp.ExecError
	if errors.As(err, &ee) {
		return ee.Message()
	}
	return err.Error()
}

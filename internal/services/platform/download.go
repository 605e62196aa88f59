package platform

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/denisAlshanov/ytplatform/internal/models"
	"github.com/denisAlshanov/ytplatform/internal/services/flags"
	"github.com/denisAlshanov/ytplatform/internal/services/ytdlp"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

const (
	audioFormat = "bestaudio/best"
	videoFormat = "(bestvideo[height<=?720][width<=?1280][ext=mp4])+(bestaudio[ext=m4a])"

	// songAudioTrack is the m4a stream merged into song videos.
	songAudioTrack = "140"

	idTemplate = "%(id)s.%(ext)s"
)

var titleReplacer = strings.NewReplacer("/", "_", "\\", "_")

// Download fetches media for req. Audio, song audio and song video always
// land in the downloads directory. Video lands there only while the video
// download flag is on; otherwise a stream URL is returned with Direct unset.
// It returns nil on failure.
func (a *Adapter) Download(ctx context.Context, req models.DownloadRequest) (result *models.DownloadResult) {
	link := normalize(req.Link, req.VideoID)
	ctx = begin(ctx, "download", link)
	defer guard(ctx, "download")

	mode := req.Mode
	if mode == "" {
		mode = models.DownloadModeAudio
	}

	var (
		path string
		err  error
	)
	switch mode {
	case models.DownloadModeSongVideo:
		path, err = a.downloadSongVideo(ctx, link, req.FormatID, req.Title)
	case models.DownloadModeSongAudio:
		path, err = a.downloadSongAudio(ctx, link, req.FormatID, req.Title)
	case models.DownloadModeVideo:
		return a.downloadVideo(ctx, link)
	case models.DownloadModeAudio:
		path, err = a.downloadByID(ctx, link, audioFormat)
	default:
		err = fmt.Errorf("unknown download mode %q", mode)
	}

	if err != nil {
		utils.LogError(ctx, "Download failed", err, utils.Fields{
			"link": link,
			"mode": string(mode),
		})
		return nil
	}

	utils.LogInfo(ctx, "Download ready", utils.Fields{
		"link": link,
		"mode": string(mode),
		"path": path,
	})
	return &models.DownloadResult{Path: path, Direct: true}
}

func (a *Adapter) downloadVideo(ctx context.Context, link string) *models.DownloadResult {
	on, err := a.flags.IsOn(ctx, flags.VideoDownload)
	if err != nil {
		utils.LogWarn(ctx, "Flag lookup failed, streaming instead", utils.Fields{
			"flag":  flags.VideoDownload,
			"error": err.Error(),
		})
		on = false
	}

	if on {
		path, err := a.downloadByID(ctx, link, videoFormat)
		if err != nil {
			utils.LogError(ctx, "Video download failed", err, utils.Fields{"link": link})
			return nil
		}
		return &models.DownloadResult{Path: path, Direct: true}
	}

	ok, result := a.Video(ctx, link, false)
	if !ok {
		utils.LogError(ctx, "Video stream unavailable", fmt.Errorf("%s", result), utils.Fields{"link": link})
		return nil
	}
	return &models.DownloadResult{Path: result, Direct: false}
}

// downloadByID stores media as <dir>/<id>.<ext>. A file already at that path
// is reused without invoking the tool.
func (a *Adapter) downloadByID(ctx context.Context, link, format string) (string, error) {
	var path string
	err := a.executor.Do(ctx, func(ctx context.Context) error {
		cctx, cancel := a.withTimeout(ctx)
		defer cancel()

		info, err := a.tool.GetInfo(cctx, link, "-f", format)
		if err != nil {
			return fmt.Errorf("probe: %w", err)
		}
		if info.ID == "" || info.Ext == "" {
			return fmt.Errorf("probe returned no id or extension for %s", link)
		}
		path = filepath.Join(a.downloadsDir, info.ID+"."+info.Ext)

		exists, err := afero.Exists(a.fs, path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if exists {
			utils.LogDebug(ctx, "Reusing downloaded file", utils.Fields{"path": path})
			return nil
		}

		if err := a.ensureDir(); err != nil {
			return err
		}
		return a.tool.Download(cctx, link, ytdlp.DownloadOptions{
			Format: format,
			Output: filepath.Join(a.downloadsDir, idTemplate),
		})
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (a *Adapter) downloadSongVideo(ctx context.Context, link, formatID, title string) (string, error) {
	name, err := fileTitle(title)
	if err != nil {
		return "", err
	}

	format := "best"
	if formatID != "" {
		format = formatID + "+" + songAudioTrack
	}
	path := filepath.Join(a.downloadsDir, name+".mp4")

	err = a.executor.Do(ctx, func(ctx context.Context) error {
		cctx, cancel := a.withTimeout(ctx)
		defer cancel()

		if err := a.ensureDir(); err != nil {
			return err
		}
		return a.tool.Download(cctx, link, ytdlp.DownloadOptions{
			Format:            format,
			Output:            filepath.Join(a.downloadsDir, escapeTemplate(name)+".mp4"),
			MergeOutputFormat: "mp4",
		})
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// downloadSongAudio converts to mp3, so the returned path carries the
// post-extraction extension rather than the source one.
func (a *Adapter) downloadSongAudio(ctx context.Context, link, formatID, title string) (string, error) {
	name, err := fileTitle(title)
	if err != nil {
		return "", err
	}

	format := formatID
	if format == "" {
		format = audioFormat
	}
	path := filepath.Join(a.downloadsDir, name+".mp3")

	err = a.executor.Do(ctx, func(ctx context.Context) error {
		cctx, cancel := a.withTimeout(ctx)
		defer cancel()

		if err := a.ensureDir(); err != nil {
			return err
		}
		return a.tool.Download(cctx, link, ytdlp.DownloadOptions{
			Format:       format,
			Output:       filepath.Join(a.downloadsDir, escapeTemplate(name)+".%(ext)s"),
			ExtractAudio: true,
			AudioFormat:  "mp3",
			AudioQuality: "192",
		})
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (a *Adapter) ensureDir() error {
	if err := a.fs.MkdirAll(a.downloadsDir, 0o755); err != nil {
		return fmt.Errorf("create downloads dir: %w", err)
	}
	return nil
}

// fileTitle turns a caller supplied title into a single path element.
func fileTitle(title string) (string, error) {
	name := strings.TrimSpace(titleReplacer.Replace(title))
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("a title is required for song downloads")
	}
	return name, nil
}

// escapeTemplate keeps yt-dlp from expanding '%' in literal file names.
func escapeTemplate(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

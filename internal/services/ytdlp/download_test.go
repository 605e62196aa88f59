package ytdlp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_AudioProfile(t *testing.T) {
	rec := &recorder{}
	c := NewWithExec("yt-dlp", rec.exec)

	err := c.Download(context.Background(), "https://www.youtube.com/watch?v=abc", DownloadOptions{
		Format: "bestaudio/best",
		Output: "downloads/%(id)s.%(ext)s",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"-f", "bestaudio/best",
		"-o", "downloads/%(id)s.%(ext)s",
		"--geo-bypass", "--no-check-certificates", "-q", "--no-warnings",
		"https://www.youtube.com/watch?v=abc",
	}, rec.args)
}

func TestDownload_SongAudioProfile(t *testing.T) {
	rec := &recorder{}
	c := NewWithExec("yt-dlp", rec.exec)

	err := c.Download(context.Background(), "https://www.youtube.com/watch?v=abc", DownloadOptions{
		Format:       "251",
		Output:       "downloads/My Song.%(ext)s",
		ExtractAudio: true,
		AudioFormat:  "mp3",
		AudioQuality: "192",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"-f", "251",
		"-o", "downloads/My Song.%(ext)s",
		"--geo-bypass", "--no-check-certificates", "-q", "--no-warnings",
		"-x", "--audio-format", "mp3", "--audio-quality", "192",
		"https://www.youtube.com/watch?v=abc",
	}, rec.args)
}

func TestDownload_MergeOutputFormat(t *testing.T) {
	opts := DownloadOptions{Format: "22+140", Output: "downloads/clip.mp4", MergeOutputFormat: "mp4"}
	assert.Contains(t, opts.Args(), "--merge-output-format")
	assert.Equal(t, "mp4", opts.Args()[len(opts.Args())-1])
}

func TestDownload_Validation(t *testing.T) {
	rec := &recorder{}
	c := NewWithExec("yt-dlp", rec.exec)

	assert.Error(t, c.Download(context.Background(), "", DownloadOptions{Format: "best", Output: "x"}))
	assert.Error(t, c.Download(context.Background(), "link", DownloadOptions{Output: "x"}))
	assert.Error(t, c.Download(context.Background(), "link", DownloadOptions{Format: "best"}))
	assert.Nil(t, rec.args)
}

func TestDownload_Failure(t *testing.T) {
	rec := &recorder{stderr: "ERROR: Requested format is not available", err: errors.New("exit status 1")}
	c := NewWithExec("yt-dlp", rec.exec)

	err := c.Download(context.Background(), "https://www.youtube.com/watch?v=abc", DownloadOptions{Format: "999", Output: "downloads/x.mp4"})
	var ee *ExecError
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, ee.Message(), "not available")
}

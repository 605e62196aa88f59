package ytdlp

import (
	"context"
	"fmt"
	"strings"
)

// DownloadOptions describes one download argument profile.
type DownloadOptions struct {
	// Format is the -f selector.
	Format string
	// Output is the -o template, e.g. "downloads/%(id)s.%(ext)s".
	Output string
	// MergeOutputFormat sets the container used when merging streams.
	MergeOutputFormat string
	// ExtractAudio post-processes into AudioFormat at AudioQuality.
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string
}

// Args renders the options in the order yt-dlp receives them, without the
// link.
func (o DownloadOptions) Args() []string {
	args := []string{
		"-f", o.Format,
		"-o", o.Output,
		"--geo-bypass",
		"--no-check-certificates",
		"-q",
		"--no-warnings",
	}
	if o.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", o.MergeOutputFormat)
	}
	if o.ExtractAudio {
		args = append(args, "-x")
		if o.AudioFormat != "" {
			args = append(args, "--audio-format", o.AudioFormat)
		}
		if o.AudioQuality != "" {
			args = append(args, "--audio-quality", o.AudioQuality)
		}
	}
	return args
}

// Download fetches link to disk using the given profile.
func (c *Client) Download(ctx context.Context, link string, opts DownloadOptions) error {
	if err := checkLink(link); err != nil {
		return err
	}
	if strings.TrimSpace(opts.Format) == "" {
		return fmt.Errorf("ytdlp: format is required")
	}
	if strings.TrimSpace(opts.Output) == "" {
		return fmt.Errorf("ytdlp: output template is required")
	}

	args := append(opts.Args(), link)
	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return nil
}

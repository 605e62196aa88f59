package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/denisAlshanov/ytplatform/internal/utils"
)

const (
	// DefaultPath is used when Client.Path is empty.
	DefaultPath = "yt-dlp"

	// StreamFormat caps resolved stream URLs at 720p / 1280 wide.
	StreamFormat = "best[height<=?720][width<=?1280]"

	// hiddenVideosWarning is emitted for playlists with private members and
	// does not mean the listing failed.
	hiddenVideosWarning = "unavailable videos are hidden"
)

// ExecFunc runs name with args and returns the captured output streams.
type ExecFunc func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)

type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Cause    error
}

func (e *ExecError) Error() string {
	cmdline := strings.TrimSpace(e.Cmd + " " + strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		return fmt.Sprintf("ytdlp: command failed (exit %d): %s", e.ExitCode, cmdline)
	}
	return fmt.Sprintf("ytdlp: command failed: %s", cmdline)
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Message returns the most useful human readable reason for the failure.
func (e *ExecError) Message() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Error()
}

// errEmptyOutput marks a command that exited cleanly but printed nothing.
var errEmptyOutput = errors.New("empty output")

// ErrOptionLikeLink is returned for links yt-dlp would parse as a flag.
var ErrOptionLikeLink = errors.New("ytdlp: link must not start with '-'")

func checkLink(link string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return fmt.Errorf("ytdlp: link is required")
	}
	if strings.HasPrefix(link, "-") {
		return ErrOptionLikeLink
	}
	return nil
}

type Client struct {
	// Path to the yt-dlp executable. Defaults to "yt-dlp" (PATH lookup).
	Path string

	execFn ExecFunc
}

func New(path string) *Client {
	return &Client{Path: path}
}

// NewWithExec returns a client whose commands are served by fn instead of a
// real process.
func NewWithExec(path string, fn ExecFunc) *Client {
	return &Client{Path: path, execFn: fn}
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return DefaultPath
	}
	return c.Path
}

func (c *Client) exec(ctx context.Context, args ...string) ([]byte, []byte, error) {
	name := c.PathOrDefault()
	if c.execFn != nil {
		return c.execFn(ctx, name, args...)
	}

	utils.LogDebug(ctx, "ytdlp: executing command", utils.Fields{
		"cmd":  name,
		"args": args,
	})

	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Version returns `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	args := []string{"--version"}
	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// StreamURL resolves a direct media URL without downloading anything.
// The first line of stdout wins; when stdout is empty the failure carries
// stderr.
func (c *Client) StreamURL(ctx context.Context, link string) (string, error) {
	if err := checkLink(link); err != nil {
		return "", err
	}

	args := []string{"-g", "-f", StreamFormat, link}
	stdout, stderr, err := c.exec(ctx, args...)

	first := strings.TrimSpace(strings.SplitN(string(stdout), "\n", 2)[0])
	if first != "" {
		return first, nil
	}
	if err == nil {
		err = errEmptyOutput
	}
	return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
}

// PlaylistIDs lists at most limit member ids of a playlist in the tool's
// order, without resolving each member.
func (c *Client) PlaylistIDs(ctx context.Context, link string, limit int) ([]string, error) {
	if err := checkLink(link); err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("ytdlp: playlist limit must be positive, got %d", limit)
	}

	args := []string{
		"-i",
		"--get-id",
		"--flat-playlist",
		"--playlist-end", strconv.Itoa(limit),
		"--skip-download",
		link,
	}
	stdout, stderr, err := c.exec(ctx, args...)

	var ids []string
	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}

	errText := strings.TrimSpace(string(stderr))
	hidden := strings.Contains(strings.ToLower(errText), hiddenVideosWarning)
	if err != nil {
		// A hidden-members warning can come with a non-zero exit while the
		// listing itself is complete. A killed or timed out run is not.
		if !hidden || len(ids) == 0 || ctx.Err() != nil {
			return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
		}
	} else if errText != "" && !hidden {
		if len(ids) == 0 {
			return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, errors.New(errText))
		}
		utils.LogWarn(ctx, "ytdlp: playlist listing reported warnings", utils.Fields{
			"link":   link,
			"stderr": errText,
		})
	}

	return ids, nil
}

// Info is a light wrapper over yt-dlp JSON output. Formats are kept as raw
// maps because individual entries routinely miss fields.
type Info struct {
	ID        string                   `json:"id"`
	Title     string                   `json:"title"`
	Ext       string                   `json:"ext"`
	Duration  float64                  `json:"duration"`
	Thumbnail string                   `json:"thumbnail"`
	Formats   []map[string]interface{} `json:"formats"`
	Raw       json.RawMessage          `json:"-"`
}

// GetInfo runs yt-dlp in metadata-only mode and parses its JSON output.
// It uses: --dump-single-json --skip-download
func (c *Client) GetInfo(ctx context.Context, link string, extraArgs ...string) (*Info, error) {
	if err := checkLink(link); err != nil {
		return nil, err
	}

	args := []string{"--dump-single-json", "--skip-download"}
	args = append(args, extraArgs...)
	args = append(args, link)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	raw := bytes.TrimSpace(stdout)
	if len(raw) == 0 {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, errEmptyOutput)
	}

	info := &Info{Raw: append([]byte(nil), raw...)}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("ytdlp: parse json: %w", err)
	}

	return info, nil
}

func wrapExecError(cmd string, args []string, stdout []byte, stderr []byte, cause error) error {
	exitCode := 0
	var ee *exec.ExitError
	if errors.As(cause, &ee) {
		exitCode = ee.ExitCode()
	}

	return &ExecError{
		Cmd:      cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
		Cause:    cause,
	}
}

// Package streamlink drives the streamlink CLI: probing whether a channel is
// live and capturing a stream, VOD, or clip to disk.
package streamlink

import (
	"context"
	"log/slog"
	"strings"

	"scrapurr/internal/logging"
	"scrapurr/internal/procexec"
)

const (
	defaultBinary = "streamlink"
	quality       = "best"
)

// CaptureResult reports one capture cycle. Path is only trustworthy when
// Succeeded is true.
type CaptureResult struct {
	Path      string
	Succeeded bool
	Output    string
}

// Client wraps the streamlink binary.
type Client struct {
	binary string
	runner procexec.Runner
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the streamlink executable.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(binary); trimmed != "" {
			c.binary = trimmed
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "streamlink")
	}
}

// NewClient constructs a Client that launches processes through runner.
func NewClient(runner procexec.Runner, opts ...Option) *Client {
	c := &Client{
		binary: defaultBinary,
		runner: runner,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProbeArgs returns the arguments used to check whether source is live.
func ProbeArgs(source string) []string {
	return []string{"--stream-url", source, quality}
}

// CaptureArgs returns the arguments used to write source to dest. startOffset
// is forwarded only when non-empty.
func CaptureArgs(source, dest, startOffset string) []string {
	args := []string{"--twitch-disable-ads", source, quality, "-o", dest}
	if offset := strings.TrimSpace(startOffset); offset != "" {
		args = append(args, "--hls-start-offset", offset)
	}
	return args
}

// Probe reports whether source currently resolves to a playable stream. A
// non-zero exit means offline; an error means streamlink could not be launched.
func (c *Client) Probe(ctx context.Context, source string) (bool, error) {
	result, err := c.runner.Run(ctx, procexec.Command{Name: c.binary, Args: ProbeArgs(source)})
	if err != nil {
		return false, err
	}
	if !result.Succeeded {
		c.logger.Debug("probe reported offline",
			logging.String("source", source),
			logging.Int("exit_code", result.ExitCode),
			logging.String("output", result.Output),
		)
	}
	return result.Succeeded, nil
}

// Capture writes source to dest and blocks until streamlink exits.
func (c *Client) Capture(ctx context.Context, source, dest, startOffset string) (CaptureResult, error) {
	result, err := c.runner.Run(ctx, procexec.Command{Name: c.binary, Args: CaptureArgs(source, dest, startOffset)})
	if err != nil {
		return CaptureResult{Path: dest}, err
	}
	if !result.Succeeded {
		logging.WarnWithContext(c.logger, "streamlink exited with failure", "capture_failed",
			logging.String(logging.FieldPath, dest),
			logging.Int("exit_code", result.ExitCode),
			logging.String("output", result.Output),
			logging.String(logging.FieldErrorHint, "check the URL and streamlink output above"),
			logging.String(logging.FieldImpact, "artifact may be missing or incomplete"),
		)
	}
	return CaptureResult{Path: dest, Succeeded: result.Succeeded, Output: result.Output}, nil
}

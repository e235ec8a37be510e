// Package postprocess turns a finished capture into its final artifact:
// optional .ts to .mp4 conversion, an optional contact sheet, and a short
// media summary. Every step after the guard is best effort.
package postprocess

import (
	"context"
	"log/slog"
	"os"

	"scrapurr/internal/config"
	"scrapurr/internal/fileutil"
	"scrapurr/internal/logging"
	"scrapurr/internal/media/contactsheet"
	"scrapurr/internal/media/ffprobe"
	"scrapurr/internal/media/remux"
	"scrapurr/internal/notifications"
	"scrapurr/internal/procexec"
	"scrapurr/internal/services"
)

const (
	rawExt       = ".ts"
	convertedExt = ".mp4"
)

// Artifact describes the processed output of one capture.
type Artifact struct {
	MediaPath        string
	ContactSheetPath string
	Converted        bool
}

// Options mirrors the post-processing settings.
type Options struct {
	ConvertToMP4         bool
	UseFFmpegConvert     bool
	GenerateContactSheet bool
	FFprobeBinary        string
}

// OptionsFromConfig extracts pipeline options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ConvertToMP4:         cfg.ConvertToMP4,
		UseFFmpegConvert:     cfg.UseFFmpegConvert,
		GenerateContactSheet: cfg.GenerateContactSheet,
		FFprobeBinary:        cfg.Tools.FFprobe,
	}
}

// Remuxer converts a raw capture into an MP4 container.
type Remuxer interface {
	Remux(ctx context.Context, input, output string) error
}

// SheetGenerator renders a contact sheet next to a media file.
type SheetGenerator interface {
	Generate(ctx context.Context, media string) (string, error)
}

type inspectFunc func(ctx context.Context, binary, path string) (ffprobe.Summary, error)

// Pipeline runs the post-processing steps for a single file.
type Pipeline struct {
	opts     Options
	remuxer  Remuxer
	sheets   SheetGenerator
	inspect  inspectFunc
	notifier notifications.Service
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRemuxer overrides the ffmpeg remuxer.
func WithRemuxer(r Remuxer) Option { return func(p *Pipeline) { p.remuxer = r } }

// WithSheetGenerator overrides the vcsi generator.
func WithSheetGenerator(g SheetGenerator) Option { return func(p *Pipeline) { p.sheets = g } }

// WithNotifier attaches a notification service.
func WithNotifier(n notifications.Service) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logging.NewComponentLogger(logger, "postprocess") }
}

func withInspector(fn inspectFunc) Option { return func(p *Pipeline) { p.inspect = fn } }

// New builds a pipeline whose tools are launched through runner.
func New(opts Options, runner procexec.Runner, tools config.Tools, options ...Option) *Pipeline {
	p := &Pipeline{
		opts:     opts,
		remuxer:  remux.New(runner, tools.FFmpeg),
		sheets:   contactsheet.New(runner, tools.ContactSheet, tools.ContactSheetWidth),
		inspect:  ffprobe.Summarize,
		notifier: notifications.NewService(nil),
		logger:   logging.NewNop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Process post-processes path. A missing or empty file is a no-op that returns
// an empty Artifact and a nil error. Conversion and contact-sheet failures are
// logged and never abort the run; the returned error is reserved for failures
// to inspect the input itself.
func (p *Pipeline) Process(ctx context.Context, path string) (Artifact, error) {
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldPath, path))

	ok, err := fileutil.NonEmpty(path)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrNotFound, "postprocess", "guard", path, err)
	}
	if !ok {
		logger.Info("file is empty or does not exist; skipping processing",
			logging.String(logging.FieldEventType, "postprocess_skipped"),
		)
		return Artifact{}, nil
	}

	artifact := Artifact{MediaPath: path}
	if p.opts.ConvertToMP4 && fileutil.HasExt(path, rawExt) {
		artifact.MediaPath, artifact.Converted = p.convert(services.WithStep(ctx, "convert"), logger, path)
	} else {
		logger.Info("saved", logging.String(logging.FieldEventType, "artifact_saved"))
	}

	if p.opts.GenerateContactSheet {
		artifact.ContactSheetPath = p.contactSheet(services.WithStep(ctx, "contact_sheet"), logger, artifact.MediaPath)
	}

	p.summarize(ctx, logger, artifact.MediaPath)

	if err := p.notifier.Publish(ctx, notifications.EventArtifactSaved, notifications.Payload{
		"path":         artifact.MediaPath,
		"contactSheet": artifact.ContactSheetPath,
	}); err != nil {
		logging.WarnWithContext(logger, "artifact notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notification for this artifact"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
	return artifact, nil
}

func (p *Pipeline) convert(ctx context.Context, logger *slog.Logger, raw string) (string, bool) {
	target := fileutil.SwapExt(raw, convertedExt)

	if !p.opts.UseFFmpegConvert {
		if err := fileutil.Move(raw, target); err != nil {
			logging.WarnWithContext(logger, "rename to mp4 failed; keeping raw capture", "rename_failed",
				logging.Error(err),
				logging.String("destination", target),
				logging.String(logging.FieldImpact, "artifact stays in .ts container"),
				logging.String(logging.FieldErrorHint, "check permissions on the output folder"),
			)
			return raw, false
		}
		logger.Info("renamed and saved", logging.String("destination", target), logging.String(logging.FieldEventType, "artifact_renamed"))
		return target, true
	}

	_, statErr := os.Stat(target)
	preexisting := statErr == nil
	if err := p.remuxer.Remux(ctx, raw, target); err != nil {
		logging.WarnWithContext(logger, "ffmpeg conversion failed; keeping raw capture", "remux_failed",
			append(logging.ErrorAttrs(err),
				logging.String("destination", target),
				logging.String(logging.FieldImpact, "artifact stays in .ts container"),
			)...,
		)
		// Only a file this attempt created is ours to clean up.
		if !preexisting {
			if removeErr := os.Remove(target); removeErr != nil && !os.IsNotExist(removeErr) {
				logger.Debug("partial mp4 cleanup failed", logging.String("destination", target), logging.Error(removeErr))
			}
		}
		return raw, false
	}

	logger.Info("converted and saved", logging.String("destination", target), logging.String(logging.FieldEventType, "artifact_converted"))
	if err := os.Remove(raw); err != nil {
		logging.WarnWithContext(logger, "raw capture cleanup failed", "raw_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "both .ts and .mp4 remain on disk"),
			logging.String(logging.FieldErrorHint, "remove the .ts file manually"),
		)
	}
	return target, true
}

func (p *Pipeline) contactSheet(ctx context.Context, logger *slog.Logger, media string) string {
	sheet, err := p.sheets.Generate(ctx, media)
	if err != nil {
		logging.WarnWithContext(logger, "contact sheet generation failed", "contact_sheet_failed",
			append(logging.ErrorAttrs(err),
				logging.String(logging.FieldImpact, "artifact saved without a contact sheet"),
			)...,
		)
		return ""
	}
	logger.Info("contact sheet generated",
		logging.String("contact_sheet", sheet),
		logging.String(logging.FieldEventType, "contact_sheet_generated"),
	)
	return sheet
}

func (p *Pipeline) summarize(ctx context.Context, logger *slog.Logger, media string) {
	if p.inspect == nil {
		return
	}
	summary, err := p.inspect(ctx, p.opts.FFprobeBinary, media)
	if err != nil {
		logger.Debug("media summary unavailable", logging.Error(err))
		return
	}
	logger.Info("artifact summary",
		logging.String("container", summary.Container),
		logging.Duration("duration", summary.Duration),
		logging.Int64("size_bytes", summary.SizeBytes),
		logging.Int("video_streams", summary.VideoStreams),
		logging.Int("audio_streams", summary.AudioStreams),
		logging.String("resolution", summary.Resolution),
		logging.String(logging.FieldEventType, "artifact_summary"),
	)
}

package recorder

import (
	"context"
	"fmt"
	"os"

	"scrapurr/internal/logging"
	"scrapurr/internal/notifications"
	"scrapurr/internal/services"
	"scrapurr/internal/target"
)

// PollLoop probes the channel every interval and records each broadcast it
// finds until ctx is cancelled. Probe and capture launch failures are logged
// and retried on the next tick; only directory and state errors end the loop.
func (s *Session) PollLoop(ctx context.Context) error {
	channel := s.target.Channel
	ctx = services.WithMode(ctx, string(target.KindLive))
	logger := logging.WithContext(ctx, s.logger)

	dir := target.LiveDir(s.output, channel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "recorder", "prepare", fmt.Sprintf("create vods directory %s", dir), err)
	}

	source := s.target.SourceURL()
	logger.Info("watching channel",
		logging.String("channel", channel),
		logging.Duration("check_interval", s.interval),
		logging.String(logging.FieldPath, dir),
	)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		live, err := s.streams.Probe(ctx, source)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.WarnWithContext(logger, "stream check failed", "probe_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
				logging.String(logging.FieldImpact, "retrying on the next check"),
			)
		case live:
			if err := s.record(ctx, source); err != nil {
				return err
			}
		default:
			logger.Info("no live stream, checking again later",
				logging.String("channel", channel),
				logging.Duration("check_interval", s.interval),
			)
		}

		if err := s.sleep(ctx, s.interval); err != nil {
			return err
		}
	}
}

// record captures one broadcast into a fresh timestamped file and processes
// it when the capture exits cleanly.
func (s *Session) record(ctx context.Context, source string) error {
	path := target.LivePath(s.output, s.target.Channel, s.now())
	if err := s.state.Set(path); err != nil {
		return services.Wrap(services.ErrValidation, "recorder", "track artifact", path, err)
	}
	ctx = services.WithStep(ctx, "capture")
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("stream is live, recording",
		logging.String("channel", s.target.Channel),
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldEventType, "capture_started"),
	)
	if err := s.notifier.Publish(ctx, notifications.EventStreamLive, notifications.Payload{"channel": s.target.Channel}); err != nil {
		logger.Debug("live notification failed", logging.Error(err))
	}

	result, err := s.streams.Capture(context.WithoutCancel(ctx), source, path, "")
	if err != nil {
		logging.ErrorWithContext(logger, "recording could not start", "capture_launch_failed",
			append(logging.ErrorAttrs(err), logging.String(logging.FieldPath, path))...,
		)
		return nil
	}
	if !result.Succeeded {
		logging.WarnWithContext(logger, "recording ended with an error", "capture_failed",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldImpact, "file left for final processing"),
		)
		return nil
	}

	logger.Info("recording finished", logging.String(logging.FieldPath, path))
	s.processOwned(ctx, logger, path)
	return nil
}

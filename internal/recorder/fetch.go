package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"scrapurr/internal/logging"
	"scrapurr/internal/services"
)

// Fetch downloads a single VOD or clip and processes it. A failed download is
// logged and reported as success so the finalizer can still inspect whatever
// was written.
func (s *Session) Fetch(ctx context.Context) error {
	ctx = services.WithMode(ctx, string(s.target.Kind))
	logger := logging.WithContext(ctx, s.logger)

	dest, err := s.target.FetchPath(s.output)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "recorder", "prepare", fmt.Sprintf("create download directory %s", dir), err)
	}
	if err := s.state.Set(dest); err != nil {
		return services.Wrap(services.ErrValidation, "recorder", "track artifact", dest, err)
	}

	attrs := []logging.Attr{
		logging.String("target", s.target.Label()),
		logging.String(logging.FieldPath, dest),
		logging.String(logging.FieldEventType, "download_started"),
	}
	if s.target.StartOffset != "" {
		attrs = append(attrs, logging.String("start_offset", s.target.StartOffset))
	}
	logger.Info("downloading", logging.Args(attrs...)...)

	result, err := s.streams.Capture(context.WithoutCancel(ctx), s.target.SourceURL(), dest, s.target.StartOffset)
	if err != nil {
		logging.ErrorWithContext(logger, "download could not start", "download_launch_failed",
			append(logging.ErrorAttrs(err), logging.String(logging.FieldPath, dest))...,
		)
		return nil
	}
	if !result.Succeeded {
		logging.WarnWithContext(logger, "download failed", "download_failed",
			logging.String(logging.FieldPath, dest),
			logging.String(logging.FieldImpact, "partial file left for final processing"),
		)
		return nil
	}

	logger.Info("download finished", logging.String(logging.FieldPath, dest))
	s.processOwned(ctx, logger, dest)
	return nil
}

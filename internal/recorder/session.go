package recorder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scrapurr/internal/artifact"
	"scrapurr/internal/logging"
	"scrapurr/internal/notifications"
	"scrapurr/internal/postprocess"
	"scrapurr/internal/services"
	"scrapurr/internal/streamlink"
	"scrapurr/internal/target"
)

// Supervisor probes and captures through the external capture tool.
type Supervisor interface {
	Probe(ctx context.Context, source string) (bool, error)
	Capture(ctx context.Context, source, dest, startOffset string) (streamlink.CaptureResult, error)
}

// Processor post-processes a finished capture.
type Processor interface {
	Process(ctx context.Context, path string) (postprocess.Artifact, error)
}

// Options wires a Session.
type Options struct {
	Target     target.Target
	OutputRoot string
	Interval   time.Duration
	Streams    Supervisor
	Pipeline   Processor
	State      *artifact.State
	Notifier   notifications.Service
	Logger     *slog.Logger
	Now        func() time.Time
	Sleep      func(context.Context, time.Duration) error
}

// Session owns the shared artifact state for a single run.
type Session struct {
	target   target.Target
	output   string
	interval time.Duration
	streams  Supervisor
	pipeline Processor
	state    *artifact.State
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(context.Context, time.Duration) error

	processMu sync.Mutex
	loopDone  chan struct{}
}

// NewSession validates opts and builds a Session.
func NewSession(opts Options) (*Session, error) {
	if strings.TrimSpace(opts.OutputRoot) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "recorder", "init", "output folder is empty", nil)
	}
	if opts.Streams == nil || opts.Pipeline == nil {
		return nil, services.Wrap(services.ErrConfiguration, "recorder", "init", "capture client and pipeline are required", nil)
	}
	if opts.Target.Kind == target.KindLive && opts.Interval <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "recorder", "init", "check interval must be positive", nil)
	}

	s := &Session{
		target:   opts.Target,
		output:   opts.OutputRoot,
		interval: opts.Interval,
		streams:  opts.Streams,
		pipeline: opts.Pipeline,
		state:    opts.State,
		notifier: opts.Notifier,
		logger:   logging.NewComponentLogger(opts.Logger, "recorder"),
		now:      opts.Now,
		sleep:    opts.Sleep,
		loopDone: make(chan struct{}),
	}
	if s.state == nil {
		s.state = &artifact.State{}
	}
	if s.notifier == nil {
		s.notifier = notifications.NewService(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	return s, nil
}

// Run races the active flow against ctx and always finalizes afterwards. It
// returns the flow's error when the flow ended the race with one; an
// interrupt is a normal completion.
func (s *Session) Run(ctx context.Context) error {
	logger := logging.WithContext(ctx, s.logger)

	loopCtx, cancelLoop := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan error, 1)
	go func() {
		defer close(s.loopDone)
		done <- s.active(loopCtx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		attrs := []logging.Attr{logging.String(logging.FieldEventType, "interrupt_received")}
		if path, ok := s.state.Current(); ok {
			attrs = append(attrs, logging.String(logging.FieldPath, path))
		}
		logger.Info("interrupt received, shutting down", logging.Args(attrs...)...)
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
			logging.ErrorWithContext(logger, "recording stopped", "run_failed", logging.ErrorAttrs(err)...)
			s.publishError(ctx, err)
		}
	}
	cancelLoop()

	s.Finalize(context.WithoutCancel(ctx))
	return runErr
}

func (s *Session) active(ctx context.Context) error {
	if s.target.Kind == target.KindLive {
		return s.PollLoop(ctx)
	}
	return s.Fetch(ctx)
}

// Finalize post-processes the tracked artifact if the active flow has not
// already done so, then seals the state so no further capture can start. It
// waits for any pipeline run already in progress.
func (s *Session) Finalize(ctx context.Context) {
	logger := logging.WithContext(ctx, s.logger)

	s.processMu.Lock()
	defer s.processMu.Unlock()

	path, ok := s.state.Seal()
	if !ok {
		logger.Debug("nothing left to finalize")
		return
	}
	logger.Info("processing last recorded/downloaded file",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldEventType, "finalize_started"),
	)
	if _, err := s.pipeline.Process(ctx, path); err != nil {
		logging.ErrorWithContext(logger, "final processing failed", "finalize_failed",
			append(logging.ErrorAttrs(err), logging.String(logging.FieldPath, path))...,
		)
	}
}

// processOwned runs the pipeline for path if the active flow still owns it.
func (s *Session) processOwned(ctx context.Context, logger *slog.Logger, path string) {
	s.processMu.Lock()
	defer s.processMu.Unlock()

	if !s.state.Claim(path) {
		logger.Debug("artifact already handed to finalizer", logging.String(logging.FieldPath, path))
		return
	}
	if _, err := s.pipeline.Process(context.WithoutCancel(ctx), path); err != nil {
		logging.ErrorWithContext(logger, "post-processing failed", "postprocess_failed",
			append(logging.ErrorAttrs(err), logging.String(logging.FieldPath, path))...,
		)
	}
}

func (s *Session) publishError(ctx context.Context, err error) {
	if notifyErr := s.notifier.Publish(context.WithoutCancel(ctx), notifications.EventError, notifications.Payload{
		"context": s.target.Label(),
		"error":   err,
	}); notifyErr != nil {
		s.logger.Debug("error notification failed", logging.Error(notifyErr))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

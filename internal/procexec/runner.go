package procexec

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"scrapurr/internal/logging"
	"scrapurr/internal/services"
)

const defaultTailLines = 20

var commandContext = exec.CommandContext

// Command names an executable and its arguments.
type Command struct {
	Name string
	Args []string
}

// String renders the command for logs.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Result describes a process that ran to completion.
type Result struct {
	ExitCode  int
	Succeeded bool
	Output    string
	Duration  time.Duration
}

// Runner launches a command and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger    *slog.Logger
	tailLines int
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithTailLines overrides how many trailing output lines are kept.
func WithTailLines(n int) Option {
	return func(r *ExecRunner) {
		if n > 0 {
			r.tailLines = n
		}
	}
}

// NewExecRunner constructs a runner that logs launches through logger.
func NewExecRunner(logger *slog.Logger, opts ...Option) *ExecRunner {
	r := &ExecRunner{
		logger:    logging.NewComponentLogger(logger, "procexec"),
		tailLines: defaultTailLines,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts cmd and blocks until it exits. Cancelling ctx kills the process;
// callers that must not interrupt a tool should pass a detached context.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return Result{ExitCode: -1}, services.Wrap(services.ErrConfiguration, "procexec", "launch", "empty command name", nil)
	}

	tail := newTailBuffer(r.tailLines)
	c := commandContext(ctx, name, cmd.Args...)
	c.Stdout = tail
	c.Stderr = tail

	r.logger.Debug("launching process",
		logging.String("command", cmd.String()),
		logging.String(logging.FieldEventType, "process_launch"),
	)

	start := time.Now()
	err := c.Run()
	result := Result{Output: tail.String(), Duration: time.Since(start)}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			r.logger.Debug("process exited with failure",
				logging.String("command", name),
				logging.Int("exit_code", result.ExitCode),
				logging.Duration("duration", result.Duration),
			)
			return result, nil
		}
		result.ExitCode = -1
		return result, services.Wrap(services.ErrExternalTool, "procexec", "launch", name, err)
	}

	result.Succeeded = true
	r.logger.Debug("process exited",
		logging.String("command", name),
		logging.Int("exit_code", 0),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

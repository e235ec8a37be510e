package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	targetKey contextKey = "target"
	modeKey   contextKey = "mode"
	stepKey   contextKey = "step"
)

// WithRunID annotates context with the per-invocation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithTarget annotates context with the channel or video being captured.
func WithTarget(ctx context.Context, target string) context.Context {
	if target == "" {
		return ctx
	}
	return context.WithValue(ctx, targetKey, target)
}

// TargetFromContext returns the capture target if present.
func TargetFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, targetKey)
}

// WithMode annotates context with the run mode (live, vod, clip).
func WithMode(ctx context.Context, mode string) context.Context {
	if mode == "" {
		return ctx
	}
	return context.WithValue(ctx, modeKey, mode)
}

// ModeFromContext returns the run mode if present.
func ModeFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, modeKey)
}

// WithStep annotates context with the post-processing step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the post-processing step if present.
func StepFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stepKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The post-processing pipeline uses Summarize to log a short description
// (duration, size, stream counts) of each finished artifact. Inspect exposes
// the full decoded Result for callers that need more.
package ffprobe

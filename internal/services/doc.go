// Package services defines shared utilities consumed by the recorder, the
// post-processing pipeline, and the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp the run identifier, target, mode, and
//     pipeline step for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (configuration vs external tool vs validation) without string
//     matching.
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the recorder.
package services

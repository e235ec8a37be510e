// Package recorder supervises one capture target per run.
//
// A Session runs the active flow (the live-channel poll loop or a one-shot
// VOD/clip fetch) in its own goroutine and races it against the caller's
// context, which the CLI cancels on SIGINT/SIGTERM. Whichever side finishes
// first ends the race; Finalize then always runs and post-processes the last
// tracked artifact unless the active flow already did.
//
// Exactly-once processing rests on two pieces: artifact.State hands a path to
// either the flow (Claim) or the finalizer (Seal), never both, and a
// processing mutex keeps the finalizer from starting while the flow is still
// inside the pipeline. External capture processes are launched with a context
// detached from cancellation, so an interrupt never kills them from here.
package recorder

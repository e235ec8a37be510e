// Package preflight provides readiness checks for the filesystem paths and
// services scrapurr depends on.
//
// These checks run in two contexts:
//   - The recorder start-up path calls RunAll and refuses to start when the
//     output folder is unusable, instead of failing on the first capture.
//   - The CLI "scrapurr doctor" command prints every result, plus the
//     external binary report from CheckDependencies.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight

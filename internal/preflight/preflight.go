package preflight

import (
	"context"
	"strings"

	"scrapurr/internal/config"
	"scrapurr/internal/deps"
)

// Check names shared with callers that treat some failures as fatal.
const (
	OutputFolderCheck = "Output folder"
	LogDirCheck       = "Log directory"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if strings.TrimSpace(cfg.OutputFolder) != "" {
		results = append(results, CheckDirectoryAccess(OutputFolderCheck, cfg.OutputFolder))
	} else {
		results = append(results, Result{Name: OutputFolderCheck, Detail: "not configured (prompted on first run)"})
	}

	if strings.TrimSpace(cfg.Logging.Dir) != "" {
		results = append(results, CheckDirectoryAccess(LogDirCheck, cfg.Logging.Dir))
	}

	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}

// CheckDependencies reports the external binaries implied by cfg.
func CheckDependencies(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, result := range results {
		if !result.Passed {
			out = append(out, result)
		}
	}
	return out
}

// Package main hosts the scrapurr CLI entrypoint and command graph.
//
// The root command resolves a capture target from flags or an interactive
// prompt, prepares configuration and logging, takes the per-target lock, and
// hands control to a recorder session that runs until the target is done or
// the process is interrupted. Subcommands cover configuration scaffolding,
// environment checks, and notification testing.
//
// Keep this package lean: behavior belongs in internal packages and is only
// wired together here.
package main

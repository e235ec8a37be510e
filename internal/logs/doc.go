// Package logs reads back the per-run log files scrapurr writes.
//
// Latest finds the newest run log in the log directory and Tail returns its
// last lines or anything appended after a byte offset, optionally waiting for
// new output. Memory stays bounded by the requested line count.
package logs

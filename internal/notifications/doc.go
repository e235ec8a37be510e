// Package notifications delivers recorder events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled.
// Enumerated event types cover the recorder milestones (stream went live,
// artifact saved, run-ending error) so the recorder and pipeline emit
// consistent messages without duplicating HTTP glue.
//
// All recorder code depends only on the Service interface.
package notifications

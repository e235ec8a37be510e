// Package config loads, normalizes, validates, and persists scrapurr settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads the TOML settings document, and honours environment
// fallbacks such as SCRAPURR_NTFY_TOPIC. The recorder-facing options
// (output_folder, convert_to_mp4, use_ffmpeg_convert, generate_contact_sheet,
// check_interval) live at the top level of the document so existing settings
// files keep working; tool, logging, and notification knobs live in their own
// tables.
//
// Always obtain settings through this package so the recorder receives
// sanitized paths and clear validation errors. Writes go through Save, which
// replaces the file atomically.
package config

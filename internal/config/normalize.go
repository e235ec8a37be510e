package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.OutputFolder = strings.TrimSpace(c.OutputFolder)
	if c.OutputFolder, err = expandPath(c.OutputFolder); err != nil {
		return fmt.Errorf("output_folder: %w", err)
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.Streamlink = fallbackString(c.Tools.Streamlink, defaultStreamlinkBinary)
	c.Tools.FFmpeg = fallbackString(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = fallbackString(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.ContactSheet = fallbackString(c.Tools.ContactSheet, defaultContactSheetBinary)
	if c.Tools.ContactSheetWidth == 0 {
		c.Tools.ContactSheetWidth = defaultContactSheetWidth
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(fallbackString(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(fallbackString(c.Logging.Level, defaultLogLevel))
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("SCRAPURR_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func fallbackString(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

package config

const (
	defaultConfigPath           = "~/.config/scrapurr/config.toml"
	defaultProjectConfigName    = "scrapurr.toml"
	defaultCheckInterval        = 60
	defaultStreamlinkBinary     = "streamlink"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultContactSheetBinary   = "vcsi"
	defaultContactSheetWidth    = 1500
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogDir               = "~/.local/share/scrapurr/logs"
	defaultLogRetentionDays     = 30
	defaultNotifyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults. OutputFolder is
// intentionally empty: the CLI prompts for it on first run and persists the answer.
func Default() Config {
	return Config{
		ConvertToMP4:         true,
		UseFFmpegConvert:     true,
		GenerateContactSheet: true,
		CheckInterval:        defaultCheckInterval,
		Tools: Tools{
			Streamlink:        defaultStreamlinkBinary,
			FFmpeg:            defaultFFmpegBinary,
			FFprobe:           defaultFFprobeBinary,
			ContactSheet:      defaultContactSheetBinary,
			ContactSheetWidth: defaultContactSheetWidth,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			StreamLive:     true,
			ArtifactSaved:  true,
			Errors:         true,
		},
	}
}

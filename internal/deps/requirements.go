package deps

import "scrapurr/internal/config"

// Requirements lists the binaries implied by cfg. A tool becomes required only
// when a setting that uses it is enabled.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	remux := cfg.ConvertToMP4 && cfg.UseFFmpegConvert
	return []Requirement{
		{
			Name:        "streamlink",
			Command:     cfg.Tools.Streamlink,
			Description: "Probes and captures streams, VODs, and clips",
		},
		{
			Name:        "ffmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Remuxes .ts captures to .mp4 (convert_to_mp4 + use_ffmpeg_convert)",
			Optional:    !remux,
		},
		{
			Name:        "vcsi",
			Command:     cfg.Tools.ContactSheet,
			Description: "Renders contact sheets (generate_contact_sheet)",
			Optional:    !cfg.GenerateContactSheet,
		},
		{
			Name:        "ffprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Summarizes finished artifacts",
			Optional:    true,
		},
	}
}

package main

import (
	"github.com/spf13/cobra"
)

type runFlags struct {
	username  string
	videoURL  string
	outputDir string
	logLevel  string
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "scrapurr",
		Short: "Record Twitch live streams and download VODs and clips",
		Long: `scrapurr watches a Twitch channel and records every broadcast, or downloads a
single VOD or clip, then optionally remuxes the capture to MP4 and renders a
contact sheet next to it.`,
		Example: `  scrapurr -u somestreamer
  scrapurr -v https://www.twitch.tv/videos/123456789?t=1h2m3s
  scrapurr -v https://clips.twitch.tv/SomeClipSlug -o ~/clips`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, ctx, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.username, "username", "u", "", "Twitch channel to watch and record")
	rootCmd.Flags().StringVarP(&flags.videoURL, "video-url", "v", "", "Twitch VOD, clip, or channel URL")
	rootCmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Override output_folder for this run")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))

	return rootCmd
}

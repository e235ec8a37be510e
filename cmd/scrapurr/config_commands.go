package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scrapurr/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set output_folder (or pass --output-dir) before recording.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, configRows(cfg), nil))
			return nil
		},
	}
}

func configRows(cfg *config.Config) [][]string {
	outputFolder := cfg.OutputFolder
	if outputFolder == "" {
		outputFolder = "(not set)"
	}
	topic := cfg.Notifications.NtfyTopic
	if topic == "" {
		topic = "(disabled)"
	}
	return [][]string{
		{"output_folder", outputFolder},
		{"convert_to_mp4", yesNo(cfg.ConvertToMP4)},
		{"use_ffmpeg_convert", yesNo(cfg.UseFFmpegConvert)},
		{"generate_contact_sheet", yesNo(cfg.GenerateContactSheet)},
		{"check_interval", cfg.PollInterval().String()},
		{"tools.streamlink", cfg.Tools.Streamlink},
		{"tools.ffmpeg", cfg.Tools.FFmpeg},
		{"tools.ffprobe", cfg.Tools.FFprobe},
		{"tools.contact_sheet", cfg.Tools.ContactSheet},
		{"tools.contact_sheet_width", strconv.Itoa(cfg.Tools.ContactSheetWidth)},
		{"logging.format", cfg.Logging.Format},
		{"logging.level", cfg.Logging.Level},
		{"logging.dir", cfg.Logging.Dir},
		{"logging.retention_days", strconv.Itoa(cfg.Logging.RetentionDays)},
		{"notifications.ntfy_topic", topic},
		{"notifications.stream_live", yesNo(cfg.Notifications.StreamLive)},
		{"notifications.artifact_saved", yesNo(cfg.Notifications.ArtifactSaved)},
		{"notifications.errors", yesNo(cfg.Notifications.Errors)},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if strings.TrimSpace(cfg.OutputFolder) == "" {
				fmt.Fprintln(out, "output_folder is empty; it will be prompted for on the next recording run")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

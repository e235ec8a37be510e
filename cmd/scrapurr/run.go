package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"scrapurr/internal/config"
	"scrapurr/internal/deps"
	"scrapurr/internal/logging"
	"scrapurr/internal/notifications"
	"scrapurr/internal/postprocess"
	"scrapurr/internal/preflight"
	"scrapurr/internal/procexec"
	"scrapurr/internal/recorder"
	"scrapurr/internal/runlock"
	"scrapurr/internal/services"
	"scrapurr/internal/streamlink"
	"scrapurr/internal/target"
)

func runCapture(cmd *cobra.Command, cc *commandContext, flags runFlags) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	prompt := newPrompter(cmd.InOrStdin(), out)

	tgt, err := resolveTarget(cmd.Context(), flags, prompt)
	if err != nil {
		return err
	}
	if err := resolveOutputFolder(cmd.Context(), cfg, cc.configPath, flags.outputDir, prompt, out); err != nil {
		return err
	}
	if level := strings.TrimSpace(flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, logPath, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.Dir, cfg.Logging.RetentionDays, logPath)

	ctx := services.WithRunID(cmd.Context(), uuid.NewString())
	ctx = services.WithTarget(ctx, tgt.Label())
	ctx = services.WithMode(ctx, string(tgt.Kind))
	runLogger := logging.WithContext(ctx, logger)

	if err := checkEnvironment(cmd, cfg, runLogger); err != nil {
		return err
	}

	lock, err := runlock.Acquire(filepath.Join(cfg.Logging.Dir, "locks"), tgt.LockKey())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "scrapurr", "lock target", tgt.Label(), err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			runLogger.Warn("failed to release target lock", logging.Error(err))
		}
	}()

	runner := procexec.NewExecRunner(logger)
	notifier := notifications.NewService(cfg)
	pipeline := postprocess.New(postprocess.OptionsFromConfig(cfg), runner, cfg.Tools,
		postprocess.WithNotifier(notifier),
		postprocess.WithLogger(logger),
	)
	session, err := recorder.NewSession(recorder.Options{
		Target:     tgt,
		OutputRoot: cfg.OutputFolder,
		Interval:   cfg.PollInterval(),
		Streams:    streamlink.NewClient(runner, streamlink.WithBinary(cfg.Tools.Streamlink), streamlink.WithLogger(logger)),
		Pipeline:   pipeline,
		Notifier:   notifier,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	runLogger.Info("scrapurr starting",
		logging.String("output_folder", cfg.OutputFolder),
		logging.String("config", cc.configPath),
		logging.String("log_file", logPath),
		logging.String("lock", lock.Path()),
	)
	return session.Run(ctx)
}

// resolveTarget prefers --video-url, then --username, then an interactive
// prompt for the channel name.
func resolveTarget(ctx context.Context, flags runFlags, prompt *prompter) (target.Target, error) {
	if raw := strings.TrimSpace(flags.videoURL); raw != "" {
		return target.Parse(raw)
	}
	name := strings.TrimSpace(flags.username)
	if name == "" {
		answer, err := prompt.ask(ctx, "Enter Twitch username: ")
		if err != nil {
			return target.Target{}, services.Wrap(services.ErrValidation, "scrapurr", "resolve target",
				"no --username or --video-url given", err)
		}
		name = answer
	}
	return target.FromUsername(name)
}

// resolveOutputFolder applies --output-dir for this run only. Without it, an
// empty output_folder is prompted for and written back to the config file.
func resolveOutputFolder(ctx context.Context, cfg *config.Config, configPath, override string, prompt *prompter, out io.Writer) error {
	if strings.TrimSpace(override) != "" {
		return cfg.SetOutputFolder(override)
	}
	if strings.TrimSpace(cfg.OutputFolder) != "" {
		return nil
	}
	answer, err := prompt.ask(ctx, "Enter output folder path: ")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "scrapurr", "resolve output folder",
			"output_folder is not set; pass --output-dir or edit "+configPath, err)
	}
	if err := cfg.SetOutputFolder(answer); err != nil {
		return services.Wrap(services.ErrConfiguration, "scrapurr", "resolve output folder", answer, err)
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved output folder %s to %s\n", cfg.OutputFolder, configPath)
	return nil
}

// checkEnvironment fails on an unusable output folder or missing required
// tools; other preflight failures are only logged.
func checkEnvironment(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	for _, result := range preflight.Failed(preflight.RunAll(cmd.Context(), cfg)) {
		if result.Name == preflight.OutputFolderCheck {
			return services.Wrap(services.ErrConfiguration, "scrapurr", "preflight", result.Detail, nil)
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "continuing without this check"),
		)
	}
	if missing := deps.MissingRequired(preflight.CheckDependencies(cfg)); len(missing) > 0 {
		return services.Wrap(services.ErrExternalTool, "scrapurr", "preflight",
			"missing required tools: "+strings.Join(missing, ", ")+" (run scrapurr doctor)", nil)
	}
	return nil
}

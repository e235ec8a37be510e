package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"scrapurr/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SCRAPURR_NTFY_TOPIC", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "scrapurr", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.OutputFolder != "" {
		t.Fatalf("expected empty output folder by default, got %q", cfg.OutputFolder)
	}
	wantLogDir := filepath.Join(tempHome, ".local", "share", "scrapurr", "logs")
	if cfg.Logging.Dir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Logging.Dir, wantLogDir)
	}
	if !cfg.ConvertToMP4 || !cfg.UseFFmpegConvert || !cfg.GenerateContactSheet {
		t.Fatalf("expected conversion and contact sheet enabled by default: %+v", cfg)
	}
	if cfg.CheckInterval != 60 {
		t.Fatalf("unexpected check interval: %d", cfg.CheckInterval)
	}
	if cfg.PollInterval() != time.Minute {
		t.Fatalf("unexpected poll interval: %s", cfg.PollInterval())
	}
	if cfg.Tools.Streamlink != "streamlink" || cfg.Tools.ContactSheet != "vcsi" {
		t.Fatalf("unexpected tool defaults: %+v", cfg.Tools)
	}
	if cfg.Tools.ContactSheetWidth != 1500 {
		t.Fatalf("unexpected contact sheet width: %d", cfg.Tools.ContactSheetWidth)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SCRAPURR_NTFY_TOPIC", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `output_folder = "~/recordings"
convert_to_mp4 = true
use_ffmpeg_convert = false
generate_contact_sheet = false
check_interval = 15

[tools]
streamlink = "/opt/bin/streamlink"

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true for custom config")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.OutputFolder != filepath.Join(tempHome, "recordings") {
		t.Fatalf("unexpected output folder: %q", cfg.OutputFolder)
	}
	if cfg.UseFFmpegConvert {
		t.Fatal("expected use_ffmpeg_convert false")
	}
	if cfg.GenerateContactSheet {
		t.Fatal("expected generate_contact_sheet false")
	}
	if cfg.CheckInterval != 15 {
		t.Fatalf("unexpected check interval: %d", cfg.CheckInterval)
	}
	if cfg.Tools.Streamlink != "/opt/bin/streamlink" {
		t.Fatalf("unexpected streamlink binary: %q", cfg.Tools.Streamlink)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("expected ffmpeg default to survive partial tools table, got %q", cfg.Tools.FFmpeg)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging values, got %+v", cfg.Logging)
	}
}

func TestNtfyTopicFallsBackToEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCRAPURR_NTFY_TOPIC", "https://ntfy.example/env-topic")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("check_interval = 30\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/env-topic" {
		t.Fatalf("expected env topic, got %q", cfg.Notifications.NtfyTopic)
	}

	content := "[notifications]\nntfy_topic = \"https://ntfy.example/file-topic\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.example/file-topic" {
		t.Fatalf("expected file topic to win over env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("output_folder = \n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read sample: %v", err)
	}
	if !strings.Contains(string(data), "output_folder") {
		t.Fatal("sample config missing output_folder")
	}

	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config failed to decode: %v", err)
	}
	if cfg.CheckInterval != 60 {
		t.Fatalf("sample check_interval mismatch: %d", cfg.CheckInterval)
	}
}

func TestLoadOrCreateWritesSampleOnce(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCRAPURR_NTFY_TOPIC", "")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, err := config.LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.OutputFolder != "" {
		t.Fatalf("expected empty output folder from sample, got %q", cfg.OutputFolder)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected sample config on disk: %v", err)
	}

	custom := "output_folder = \"/srv/streams\"\n"
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, _, err = config.LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate returned error: %v", err)
	}
	if cfg.OutputFolder != "/srv/streams" {
		t.Fatalf("existing config was overwritten: %q", cfg.OutputFolder)
	}
}

func TestSavePersistsOutputFolder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SCRAPURR_NTFY_TOPIC", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	target := filepath.Join(t.TempDir(), "streams")
	if err := cfg.SetOutputFolder(target); err != nil {
		t.Fatalf("SetOutputFolder returned error: %v", err)
	}
	cfg.CheckInterval = 45
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	reloaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.OutputFolder != target {
		t.Fatalf("output folder not persisted: got %q want %q", reloaded.OutputFolder, target)
	}
	if reloaded.CheckInterval != 45 {
		t.Fatalf("check interval not persisted: %d", reloaded.CheckInterval)
	}
	if !reloaded.ConvertToMP4 {
		t.Fatal("expected convert_to_mp4 to survive save")
	}
}

func TestSetOutputFolderRejectsBlank(t *testing.T) {
	cfg := config.Default()
	if err := cfg.SetOutputFolder("   "); err == nil {
		t.Fatal("expected error for blank output folder")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero interval", func(c *config.Config) { c.CheckInterval = 0 }},
		{"negative width", func(c *config.Config) { c.Tools.ContactSheetWidth = -1 }},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "chatty" }},
		{"negative retention", func(c *config.Config) { c.Logging.RetentionDays = -3 }},
		{"zero timeout", func(c *config.Config) { c.Notifications.RequestTimeout = 0 }},
		{"bare topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/captures")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "captures") {
		t.Fatalf("unexpected expansion: %q", got)
	}
	empty, err := config.ExpandPath("")
	if err != nil || empty != "" {
		t.Fatalf("expected empty passthrough, got %q, %v", empty, err)
	}
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tools names the external binaries the recorder shells out to.
type Tools struct {
	Streamlink        string `toml:"streamlink"`
	FFmpeg            string `toml:"ffmpeg"`
	FFprobe           string `toml:"ffprobe"`
	ContactSheet      string `toml:"contact_sheet"`
	ContactSheetWidth int    `toml:"contact_sheet_width"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	StreamLive     bool   `toml:"stream_live"`
	ArtifactSaved  bool   `toml:"artifact_saved"`
	Errors         bool   `toml:"errors"`
}

// Config encapsulates all configuration values for scrapurr.
//
// The top-level keys drive the recorder and post-processing pipeline:
//   - OutputFolder: root directory for every artifact
//   - ConvertToMP4: remux or rename .ts captures to .mp4
//   - UseFFmpegConvert: remux with ffmpeg instead of a plain rename
//   - GenerateContactSheet: render a thumbnail grid next to each artifact
//   - CheckInterval: seconds between live-stream probes
type Config struct {
	OutputFolder         string        `toml:"output_folder"`
	ConvertToMP4         bool          `toml:"convert_to_mp4"`
	UseFFmpegConvert     bool          `toml:"use_ffmpeg_convert"`
	GenerateContactSheet bool          `toml:"generate_contact_sheet"`
	CheckInterval        int           `toml:"check_interval"`
	Tools                Tools         `toml:"tools"`
	Logging              Logging       `toml:"logging"`
	Notifications        Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadOrCreate behaves like Load but writes the sample configuration first when
// no file exists at the resolved location.
func LoadOrCreate(path string) (*Config, string, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		if err := CreateSample(resolvedPath); err != nil {
			return nil, "", err
		}
	}
	cfg, resolved, _, err := Load(resolvedPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

// Save writes the configuration to path, replacing any existing file atomically.
func (c *Config) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("save config: empty path")
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetOutputFolder expands and stores a new output folder value.
func (c *Config) SetOutputFolder(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return errors.New("output_folder must not be empty")
	}
	expanded, err := expandPath(trimmed)
	if err != nil {
		return fmt.Errorf("output_folder: %w", err)
	}
	c.OutputFolder = expanded
	return nil
}

// PollInterval returns check_interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the recorder writes into. The
// output folder is only created when it has been configured.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Logging.Dir}
	if strings.TrimSpace(c.OutputFolder) != "" {
		dirs = append(dirs, c.OutputFolder)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := renameio.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StorageDir string `toml:"storage_dir"`
	APIBind    string `toml:"api_bind"`
	BaseURL    string `toml:"base_url"`
}

// Queue contains worker pool settings.
type Queue struct {
	Workers      int `toml:"workers"`
	PollInterval int `toml:"poll_interval"`
}

// Uploads contains limits applied to ingested videos.
type Uploads struct {
	MaxDurationSec float64 `toml:"max_duration_sec"`
	MaxUploadMB    int64   `toml:"max_upload_mb"`
}

// Providers selects the ASR and translation backends.
type Providers struct {
	ASR         string `toml:"asr"`
	Translation string `toml:"translation"`
}

// OpenAI contains connection settings for the OpenAI-compatible providers.
type OpenAI struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	ASRModel         string `toml:"asr_model"`
	TranslationModel string `toml:"translation_model"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Autobbq.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Queue     Queue     `toml:"queue"`
	Uploads   Uploads   `toml:"uploads"`
	Providers Providers `toml:"providers"`
	OpenAI    OpenAI    `toml:"openai"`
	Tools     Tools     `toml:"tools"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autobbq/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file actually existed at the resolved path.
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

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// Storage layout helpers. All pipeline artifacts live below StorageDir.

// UploadsDir is where ingested originals are stored.
func (c *Config) UploadsDir() string { return filepath.Join(c.Paths.StorageDir, "uploads") }

// SubtitlesDir is where generated subtitle files are stored.
func (c *Config) SubtitlesDir() string { return filepath.Join(c.Paths.StorageDir, "subtitles") }

// OutputDir is where rendered videos are stored.
func (c *Config) OutputDir() string { return filepath.Join(c.Paths.StorageDir, "output") }

// TempDir holds transient artifacts such as generated ASS scripts.
func (c *Config) TempDir() string { return filepath.Join(c.Paths.StorageDir, "temp") }

// DataDir holds the SQLite database.
func (c *Config) DataDir() string { return filepath.Join(c.Paths.StorageDir, "data") }

// LogDir holds service logs.
func (c *Config) LogDir() string { return filepath.Join(c.Paths.StorageDir, "logs") }

// EnsureDirectories creates the storage layout if it does not exist.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StorageDir,
		c.UploadsDir(),
		c.SubtitlesDir(),
		c.OutputDir(),
		c.TempDir(),
		c.DataDir(),
		c.LogDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}

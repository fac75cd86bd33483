package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autobbq/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("file should not exist")
	}
	if resolved != path {
		t.Fatalf("resolved path %q, want %q", resolved, path)
	}

	if cfg.Paths.APIBind != "127.0.0.1:4000" {
		t.Errorf("api_bind default = %q", cfg.Paths.APIBind)
	}
	if cfg.Queue.Workers != 2 {
		t.Errorf("workers default = %d", cfg.Queue.Workers)
	}
	if cfg.Uploads.MaxDurationSec != 300 {
		t.Errorf("max_duration_sec default = %g", cfg.Uploads.MaxDurationSec)
	}
	if cfg.Providers.ASR != "mock" || cfg.Providers.Translation != "mock" {
		t.Errorf("provider defaults = %q/%q", cfg.Providers.ASR, cfg.Providers.Translation)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Errorf("tool defaults = %q/%q", cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("logging defaults = %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
storage_dir = "` + dir + `/store"
base_url = "http://example.com/"

[queue]
workers = 4

[providers]
asr = "MOCK"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Queue.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Queue.Workers)
	}
	if cfg.Paths.BaseURL != "http://example.com" {
		t.Errorf("base_url should drop the trailing slash, got %q", cfg.Paths.BaseURL)
	}
	if cfg.Providers.ASR != "mock" {
		t.Errorf("provider name should be lowercased, got %q", cfg.Providers.ASR)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"too many workers", "[queue]\nworkers = 64\n", "queue.workers"},
		{"bad provider", "[providers]\nasr = \"whisper\"\n", "providers.asr"},
		{"bad log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"negative duration", "[uploads]\nmax_duration_sec = -5\n", "max_duration_sec"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, "[providers]\nasr = \"openai\"\n")
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "openai.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestOpenAIKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeConfig(t, "[providers]\nasr = \"openai\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("api key from env = %q", cfg.OpenAI.APIKey)
	}
}

func TestStorageLayoutHelpers(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StorageDir = "/srv/autobbq"

	cases := []struct {
		got  string
		want string
	}{
		{cfg.UploadsDir(), "/srv/autobbq/uploads"},
		{cfg.SubtitlesDir(), "/srv/autobbq/subtitles"},
		{cfg.OutputDir(), "/srv/autobbq/output"},
		{cfg.TempDir(), "/srv/autobbq/temp"},
		{cfg.DataDir(), "/srv/autobbq/data"},
		{cfg.LogDir(), "/srv/autobbq/logs"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("layout helper = %q, want %q", tc.got, tc.want)
		}
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(content), "[paths]") {
		t.Fatal("sample config missing [paths] section")
	}
}

// Package testsupport provides shared helpers for package tests: temp-dir
// backed configs, store setup, and file fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"autobbq/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp storage directory
// per test. Providers default to the mock pair so no test reaches the
// network.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StorageDir = filepath.Join(base, "storage")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Paths.BaseURL = "http://localhost:4000"
	cfg.Providers.ASR = "mock"
	cfg.Providers.Translation = "mock"
	cfg.Queue.Workers = 1
	cfg.Queue.PollInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithWorkers overrides the worker count on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Queue.Workers = workers
	}
}

// WithMaxDuration overrides the upload duration cap on the test config.
func WithMaxDuration(seconds float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Uploads.MaxDurationSec = seconds
	}
}

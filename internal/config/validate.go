package config

import (
	"errors"
	"fmt"
)

var knownProviders = map[string]struct{}{
	"mock":   {},
	"openai": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateUploads(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.Workers < 1 || c.Queue.Workers > 32 {
		return errors.New("queue.workers must be between 1 and 32")
	}
	return nil
}

func (c *Config) validateUploads() error {
	if c.Uploads.MaxDurationSec <= 0 {
		return errors.New("uploads.max_duration_sec must be positive")
	}
	if c.Uploads.MaxUploadMB <= 0 {
		return errors.New("uploads.max_upload_mb must be positive")
	}
	return nil
}

func (c *Config) validateProviders() error {
	if _, ok := knownProviders[c.Providers.ASR]; !ok {
		return fmt.Errorf("providers.asr must be one of mock, openai; got %q", c.Providers.ASR)
	}
	if _, ok := knownProviders[c.Providers.Translation]; !ok {
		return fmt.Errorf("providers.translation must be one of mock, openai; got %q", c.Providers.Translation)
	}
	if c.Providers.ASR == "openai" || c.Providers.Translation == "openai" {
		if c.OpenAI.APIKey == "" {
			return errors.New("openai.api_key is required when an openai provider is selected. Set OPENAI_API_KEY or edit the config file")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
	return nil
}

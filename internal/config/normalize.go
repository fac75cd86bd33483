package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeProviders()
	c.normalizeOpenAI()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StorageDir) == "" {
		c.Paths.StorageDir = defaultStorageDir
	}
	if c.Paths.StorageDir, err = expandPath(c.Paths.StorageDir); err != nil {
		return fmt.Errorf("paths.storage_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.BaseURL = strings.TrimRight(strings.TrimSpace(c.Paths.BaseURL), "/")
	if c.Paths.BaseURL == "" {
		c.Paths.BaseURL = defaultBaseURL
	}
	return nil
}

func (c *Config) normalizeQueue() {
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = defaultQueueWorkers
	}
	if c.Queue.PollInterval <= 0 {
		c.Queue.PollInterval = defaultPollInterval
	}
}

func (c *Config) normalizeProviders() {
	c.Providers.ASR = strings.ToLower(strings.TrimSpace(c.Providers.ASR))
	if c.Providers.ASR == "" {
		c.Providers.ASR = defaultProvider
	}
	c.Providers.Translation = strings.ToLower(strings.TrimSpace(c.Providers.Translation))
	if c.Providers.Translation == "" {
		c.Providers.Translation = defaultProvider
	}
}

func (c *Config) normalizeOpenAI() {
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	if strings.TrimSpace(c.OpenAI.ASRModel) == "" {
		c.OpenAI.ASRModel = defaultASRModel
	}
	if strings.TrimSpace(c.OpenAI.TranslationModel) == "" {
		c.OpenAI.TranslationModel = defaultTranslationModel
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeout
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

const (
	defaultStorageDir       = "~/.local/share/autobbq"
	defaultAPIBind          = "127.0.0.1:4000"
	defaultBaseURL          = "http://localhost:4000"
	defaultQueueWorkers     = 2
	defaultPollInterval     = 2
	defaultMaxDurationSec   = 300
	defaultMaxUploadMB      = 300
	defaultProvider         = "mock"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultASRModel         = "gpt-4o-mini-transcribe"
	defaultTranslationModel = "gpt-4o-mini"
	defaultOpenAITimeout    = 120
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageDir: defaultStorageDir,
			APIBind:    defaultAPIBind,
			BaseURL:    defaultBaseURL,
		},
		Queue: Queue{
			Workers:      defaultQueueWorkers,
			PollInterval: defaultPollInterval,
		},
		Uploads: Uploads{
			MaxDurationSec: defaultMaxDurationSec,
			MaxUploadMB:    defaultMaxUploadMB,
		},
		Providers: Providers{
			ASR:         defaultProvider,
			Translation: defaultProvider,
		},
		OpenAI: OpenAI{
			BaseURL:          defaultOpenAIBaseURL,
			ASRModel:         defaultASRModel,
			TranslationModel: defaultTranslationModel,
			TimeoutSeconds:   defaultOpenAITimeout,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

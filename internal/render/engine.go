package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"autobbq/internal/logging"
	"autobbq/internal/media"
	"autobbq/internal/media/ffmpeg"
	"autobbq/internal/services"
	"autobbq/internal/subtitle"
)

// ErrNoSubtitleFilter is returned when the ffmpeg build supports neither
// drawtext nor the ass filter. This is a deployment problem, not a job
// problem; retrying cannot succeed.
var ErrNoSubtitleFilter = fmt.Errorf(
	"%w: current ffmpeg lacks both 'drawtext' and 'ass' filters, so subtitles cannot be burned into video; use the Docker backend or install an ffmpeg build with libfreetype/libass",
	services.ErrConfiguration,
)

// Engine burns subtitles into video files via the external filter program.
type Engine struct {
	runner ffmpeg.Runner
	caps   *capabilityCache
	logger *slog.Logger
}

// Option customizes engine construction.
type Option func(*Engine)

// WithProber overrides how filter support is detected (used in tests).
func WithProber(prober FilterProber) Option {
	return func(e *Engine) {
		if prober != nil {
			e.caps = newCapabilityCache(prober)
		}
	}
}

// NewEngine constructs a render engine around the given runner. The
// capability probe defaults to invoking the same binary name the runner
// uses when it is a CommandRunner.
func NewEngine(runner ffmpeg.Runner, logger *slog.Logger, opts ...Option) *Engine {
	binary := ""
	if cmd, ok := runner.(ffmpeg.CommandRunner); ok {
		binary = cmd.Binary()
	}
	engine := &Engine{
		runner: runner,
		caps:   newCapabilityCache(defaultProber(binary)),
		logger: logging.NewComponentLogger(logger, "render"),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// BurnRequest carries everything one burn-in pass needs. The engine decides
// which strategy applies; callers always supply both the raw cues and the
// pre-generated ASS script path.
type BurnRequest struct {
	InputPath  string
	ASSPath    string
	Cues       []subtitle.Cue
	Style      subtitle.StyleConfig
	Metadata   media.Metadata
	OutputPath string
}

// Burn composites subtitles into a new video file, preserving the audio
// stream unmodified.
func (e *Engine) Burn(ctx context.Context, req BurnRequest) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}

	switch {
	case e.caps.hasFilter(ctx, "drawtext"):
		fontFile := resolveCJKFontFile()
		filter := buildDrawtextFilter(req.Cues, req.Style, req.Metadata, fontFile)
		e.logger.Info("burning subtitles with drawtext",
			logging.Int("cues", len(req.Cues)),
			logging.Bool("cjk_font", fontFile != ""),
		)
		return e.run(ctx, req.InputPath, filter, req.OutputPath)
	case e.caps.hasFilter(ctx, "ass"):
		e.logger.Info("burning subtitles with ass script", logging.String("script", req.ASSPath))
		return e.run(ctx, req.InputPath, buildASSFilter(req.ASSPath), req.OutputPath)
	default:
		return ErrNoSubtitleFilter
	}
}

func (e *Engine) run(ctx context.Context, inputPath, filter, outputPath string) error {
	return e.runner.Run(ctx, "-y", "-i", inputPath, "-vf", filter, "-c:a", "copy", outputPath)
}

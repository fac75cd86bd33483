// Package processor implements the two pipeline stages: transcription with
// translation and subtitle generation, and subtitle burn-in rendering.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"autobbq/internal/config"
	"autobbq/internal/logging"
	"autobbq/internal/providers"
	"autobbq/internal/queue"
	"autobbq/internal/render"
	"autobbq/internal/subtitle"
	"autobbq/internal/videos"
)

// ProcessResult is the payload of a finished transcription-stage job.
type ProcessResult struct {
	SubtitleEnURL string `json:"subtitleEnUrl"`
	SubtitleZhURL string `json:"subtitleZhUrl"`
}

// RenderResult is the payload of a finished render-stage job.
type RenderResult struct {
	OutputURL string `json:"outputUrl"`
}

// Processor orchestrates the pipeline stages against the video store, the
// ASR and translation collaborators, and the render engine.
type Processor struct {
	cfg        *config.Config
	videos     *videos.Service
	asr        providers.ASR
	translator providers.Translator
	engine     *render.Engine
	logger     *slog.Logger
}

// New constructs a processor.
func New(
	cfg *config.Config,
	videoService *videos.Service,
	asr providers.ASR,
	translator providers.Translator,
	engine *render.Engine,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		cfg:        cfg,
		videos:     videoService,
		asr:        asr,
		translator: translator,
		engine:     engine,
		logger:     logging.NewComponentLogger(logger, "processor"),
	}
}

// Register binds the stage handlers to their job kinds.
func (p *Processor) Register(pool *queue.Pool) {
	pool.Register(queue.KindProcess, p.ProcessVideo)
	pool.Register(queue.KindRender, p.RenderVideo)
}

// ProcessVideo runs the transcription stage: ASR, translation, and the four
// subtitle files. Progress checkpoints are 10 (before ASR), 45 (before
// translation), and 100 on completion.
func (p *Processor) ProcessVideo(ctx context.Context, job *queue.Job, progress queue.ProgressFunc) (any, error) {
	video, err := p.videos.Get(ctx, job.VideoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, errors.New("video not found")
	}

	if err := progress(ctx, 10); err != nil {
		return nil, err
	}
	enCues, err := p.asr.Transcribe(ctx, video.OriginalPath, video.DurationSec)
	if err != nil {
		return nil, err
	}
	if len(enCues) == 0 {
		return nil, errors.New("ASR returned empty subtitles")
	}

	if err := progress(ctx, 45); err != nil {
		return nil, err
	}
	texts := make([]string, len(enCues))
	for index, cue := range enCues {
		texts[index] = cue.Text
	}
	zhTexts, err := p.translator.Translate(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(zhTexts) != len(enCues) {
		return nil, errors.New("Translation result count mismatch")
	}

	zhCues := make([]subtitle.Cue, len(enCues))
	for index, cue := range enCues {
		zhCues[index] = subtitle.Cue{StartSec: cue.StartSec, EndSec: cue.EndSec, Text: zhTexts[index]}
	}

	paths, err := p.writeSubtitleFiles(video.ID, enCues, zhCues)
	if err != nil {
		return nil, err
	}

	if err := p.videos.Store().SaveSubtitles(ctx, video.ID, paths.enVTT, paths.zhVTT); err != nil {
		return nil, err
	}
	if err := progress(ctx, 100); err != nil {
		return nil, err
	}

	p.logger.Info("transcription stage finished",
		logging.String("video_id", video.ID),
		logging.Int("cues", len(enCues)),
	)
	return ProcessResult{
		SubtitleEnURL: p.videos.AbsoluteFileURL(paths.enVTT),
		SubtitleZhURL: p.videos.AbsoluteFileURL(paths.zhVTT),
	}, nil
}

type subtitlePaths struct {
	enVTT string
	enSRT string
	zhVTT string
	zhSRT string
}

// writeSubtitleFiles writes the four subtitle artifacts concurrently. All
// four writes complete before the stage advances; the first failure aborts
// the stage so no partial success is ever reported.
func (p *Processor) writeSubtitleFiles(videoID string, enCues, zhCues []subtitle.Cue) (subtitlePaths, error) {
	dir := p.cfg.SubtitlesDir()
	paths := subtitlePaths{}
	var err error
	if paths.enVTT, err = videos.SafeJoin(dir, videoID+".en.vtt"); err != nil {
		return paths, err
	}
	if paths.enSRT, err = videos.SafeJoin(dir, videoID+".en.srt"); err != nil {
		return paths, err
	}
	if paths.zhVTT, err = videos.SafeJoin(dir, videoID+".zh.vtt"); err != nil {
		return paths, err
	}
	if paths.zhSRT, err = videos.SafeJoin(dir, videoID+".zh.srt"); err != nil {
		return paths, err
	}

	writes := []struct {
		path    string
		content string
	}{
		{paths.enVTT, subtitle.GenerateVTT(enCues)},
		{paths.enSRT, subtitle.GenerateSRT(enCues)},
		{paths.zhVTT, subtitle.GenerateVTT(zhCues)},
		{paths.zhSRT, subtitle.GenerateSRT(zhCues)},
	}

	var wg sync.WaitGroup
	writeErrs := make([]error, len(writes))
	for index, write := range writes {
		wg.Add(1)
		go func(index int, path, content string) {
			defer wg.Done()
			if writeErr := os.WriteFile(path, []byte(content), 0o644); writeErr != nil {
				writeErrs[index] = fmt.Errorf("write subtitle %s: %w", path, writeErr)
			}
		}(index, write.path, write.content)
	}
	wg.Wait()

	return paths, errors.Join(writeErrs...)
}

// RenderVideo runs the render stage: parse the Chinese subtitles, generate
// the ASS script, and burn it into a new output file. Progress checkpoints
// are 20 (after lookup), 50 (before the burn), and 100 on completion.
func (p *Processor) RenderVideo(ctx context.Context, job *queue.Job, progress queue.ProgressFunc) (any, error) {
	video, err := p.videos.Get(ctx, job.VideoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, errors.New("video not found")
	}
	if video.SubtitleZhPath == "" {
		return nil, errors.New("Chinese subtitle not found. Run process first.")
	}

	style, err := decodeStyle(job.StyleJSON)
	if err != nil {
		return nil, err
	}

	if err := progress(ctx, 20); err != nil {
		return nil, err
	}
	vttContent, err := os.ReadFile(video.SubtitleZhPath)
	if err != nil {
		return nil, fmt.Errorf("read Chinese subtitles: %w", err)
	}
	cues := subtitle.ParseVTT(string(vttContent))
	if len(cues) == 0 {
		return nil, errors.New("No subtitle cues found for rendering")
	}

	metadata := video.Metadata()
	assContent := subtitle.GenerateASS(cues, style, metadata)
	assPath, err := videos.SafeJoin(p.cfg.TempDir(), fmt.Sprintf("%s.%d.ass", video.ID, time.Now().UnixMilli()))
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(assPath, []byte(assContent), 0o644); err != nil {
		return nil, fmt.Errorf("write ASS script: %w", err)
	}
	// The script is transient; remove it on every exit path, success or not.
	defer os.Remove(assPath)

	if err := progress(ctx, 50); err != nil {
		return nil, err
	}
	outputPath, err := videos.SafeJoin(p.cfg.OutputDir(), video.ID+".rendered.mp4")
	if err != nil {
		return nil, err
	}
	if err := p.engine.Burn(ctx, render.BurnRequest{
		InputPath:  video.OriginalPath,
		ASSPath:    assPath,
		Cues:       cues,
		Style:      style,
		Metadata:   metadata,
		OutputPath: outputPath,
	}); err != nil {
		return nil, err
	}

	if err := p.videos.Store().SaveOutput(ctx, video.ID, outputPath); err != nil {
		return nil, err
	}
	if err := progress(ctx, 100); err != nil {
		return nil, err
	}

	p.logger.Info("render stage finished",
		logging.String("video_id", video.ID),
		logging.String("output", outputPath),
	)
	return RenderResult{OutputURL: p.videos.AbsoluteFileURL(outputPath)}, nil
}

func decodeStyle(styleJSON string) (subtitle.StyleConfig, error) {
	var style subtitle.StyleConfig
	if styleJSON == "" {
		return style, errors.New("render job is missing its style configuration")
	}
	if err := json.Unmarshal([]byte(styleJSON), &style); err != nil {
		return style, fmt.Errorf("decode style configuration: %w", err)
	}
	if err := style.Normalize(); err != nil {
		return style, err
	}
	return style, nil
}

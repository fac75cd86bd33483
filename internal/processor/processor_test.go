package processor_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"autobbq/internal/config"
	"autobbq/internal/logging"
	"autobbq/internal/processor"
	"autobbq/internal/providers"
	"autobbq/internal/queue"
	"autobbq/internal/render"
	"autobbq/internal/subtitle"
	"autobbq/internal/testsupport"
	"autobbq/internal/videos"
)

type fakeProber struct{ listing string }

func (p fakeProber) ListFilters(context.Context) (string, error) {
	return p.listing, nil
}

type fakeRunner struct {
	calls [][]string
}

func (r *fakeRunner) Run(_ context.Context, args ...string) error {
	r.calls = append(r.calls, args)
	// Simulate ffmpeg producing its output file (the final argument).
	if len(args) > 0 {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("rendered"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fixture struct {
	cfg        *config.Config
	store      *queue.Store
	videoStore *videos.Store
	service    *videos.Service
	processor  *processor.Processor
	runner     *fakeRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	videoStore := testsupport.MustOpenVideoStore(t, store)
	service := videos.NewService(cfg, videoStore, logging.NewNop())

	runner := &fakeRunner{}
	engine := render.NewEngine(runner, logging.NewNop(), render.WithProber(fakeProber{listing: "drawtext ass"}))

	proc := processor.New(cfg, service, providers.MockASR{}, providers.MockTranslator{}, engine, logging.NewNop())
	return &fixture{
		cfg:        cfg,
		store:      store,
		videoStore: videoStore,
		service:    service,
		processor:  proc,
		runner:     runner,
	}
}

func (f *fixture) insertVideo(t *testing.T, durationSec float64) *videos.Record {
	t.Helper()

	originalPath := filepath.Join(f.cfg.UploadsDir(), uuid.NewString()+".mp4")
	testsupport.WriteFile(t, originalPath, 256)

	record := &videos.Record{
		ID:               uuid.NewString(),
		OriginalFilename: "demo.mp4",
		MimeType:         "video/mp4",
		OriginalPath:     originalPath,
		DurationSec:      durationSec,
		Width:            1280,
		Height:           720,
		FPS:              30,
	}
	if err := f.videoStore.Insert(context.Background(), record); err != nil {
		t.Fatalf("insert video: %v", err)
	}
	return record
}

func noProgress(context.Context, float64) error { return nil }

func TestProcessVideoProducesSubtitles(t *testing.T) {
	f := newFixture(t)
	record := f.insertVideo(t, 30)

	job := &queue.Job{ID: uuid.NewString(), VideoID: record.ID, Kind: queue.KindProcess}
	result, err := f.processor.ProcessVideo(context.Background(), job, noProgress)
	if err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}

	processResult, ok := result.(processor.ProcessResult)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	if !strings.Contains(processResult.SubtitleEnURL, "/files/subtitles/"+record.ID+".en.vtt") {
		t.Fatalf("unexpected English subtitle URL %q", processResult.SubtitleEnURL)
	}
	if !strings.Contains(processResult.SubtitleZhURL, "/files/subtitles/"+record.ID+".zh.vtt") {
		t.Fatalf("unexpected Chinese subtitle URL %q", processResult.SubtitleZhURL)
	}

	// All four artifacts exist and carry the expected shapes.
	for _, name := range []string{".en.vtt", ".en.srt", ".zh.vtt", ".zh.srt"} {
		path := filepath.Join(f.cfg.SubtitlesDir(), record.ID+name)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("missing subtitle artifact %s: %v", name, err)
		}
		if strings.HasSuffix(name, ".vtt") && !strings.HasPrefix(string(content), "WEBVTT") {
			t.Errorf("%s lacks WEBVTT header", name)
		}
	}

	zhContent, err := os.ReadFile(filepath.Join(f.cfg.SubtitlesDir(), record.ID+".zh.vtt"))
	if err != nil {
		t.Fatalf("read Chinese subtitles: %v", err)
	}
	if !strings.Contains(string(zhContent), "大家好") {
		t.Error("Chinese subtitles missing translated text")
	}

	updated, err := f.service.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if updated.SubtitleEnPath == "" || updated.SubtitleZhPath == "" {
		t.Fatalf("subtitle paths not saved: %#v", updated)
	}

	// English and Chinese cue timings must match pairwise.
	enCues := subtitle.ParseVTT(readFile(t, updated.SubtitleEnPath))
	zhCues := subtitle.ParseVTT(readFile(t, updated.SubtitleZhPath))
	if len(enCues) == 0 || len(enCues) != len(zhCues) {
		t.Fatalf("cue count mismatch: en=%d zh=%d", len(enCues), len(zhCues))
	}
	for i := range enCues {
		if enCues[i].StartSec != zhCues[i].StartSec || enCues[i].EndSec != zhCues[i].EndSec {
			t.Fatalf("cue %d timing mismatch: %v vs %v", i, enCues[i], zhCues[i])
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(content)
}

func TestProcessVideoUnknownVideo(t *testing.T) {
	f := newFixture(t)

	job := &queue.Job{ID: uuid.NewString(), VideoID: "missing", Kind: queue.KindProcess}
	_, err := f.processor.ProcessVideo(context.Background(), job, noProgress)
	if err == nil || err.Error() != "video not found" {
		t.Fatalf("expected \"video not found\", got %v", err)
	}
}

type emptyASR struct{}

func (emptyASR) Transcribe(context.Context, string, float64) ([]subtitle.Cue, error) {
	return nil, nil
}

func TestProcessVideoEmptyTranscription(t *testing.T) {
	f := newFixture(t)
	record := f.insertVideo(t, 30)

	proc := processor.New(f.cfg, f.service, emptyASR{}, providers.MockTranslator{},
		render.NewEngine(f.runner, logging.NewNop(), render.WithProber(fakeProber{listing: "drawtext"})),
		logging.NewNop())

	job := &queue.Job{ID: uuid.NewString(), VideoID: record.ID, Kind: queue.KindProcess}
	_, err := proc.ProcessVideo(context.Background(), job, noProgress)
	if err == nil || err.Error() != "ASR returned empty subtitles" {
		t.Fatalf("expected empty-transcription error, got %v", err)
	}
}

type shortTranslator struct{}

func (shortTranslator) Translate(_ context.Context, texts []string) ([]string, error) {
	return texts[:len(texts)-1], nil
}

func TestProcessVideoTranslationMismatch(t *testing.T) {
	f := newFixture(t)
	record := f.insertVideo(t, 30)

	proc := processor.New(f.cfg, f.service, providers.MockASR{}, shortTranslator{},
		render.NewEngine(f.runner, logging.NewNop(), render.WithProber(fakeProber{listing: "drawtext"})),
		logging.NewNop())

	job := &queue.Job{ID: uuid.NewString(), VideoID: record.ID, Kind: queue.KindProcess}
	_, err := proc.ProcessVideo(context.Background(), job, noProgress)
	if err == nil || err.Error() != "Translation result count mismatch" {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func styleJSON(t *testing.T) string {
	t.Helper()
	style := subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 0.5, Y: 0.9}}
	if err := style.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	payload, err := json.Marshal(style)
	if err != nil {
		t.Fatalf("marshal style: %v", err)
	}
	return string(payload)
}

func TestRenderVideoBurnsSubtitles(t *testing.T) {
	f := newFixture(t)
	record := f.insertVideo(t, 30)

	// Run the transcription stage first so the Chinese VTT exists.
	processJob := &queue.Job{ID: uuid.NewString(), VideoID: record.ID, Kind: queue.KindProcess}
	if _, err := f.processor.ProcessVideo(context.Background(), processJob, noProgress); err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}

	renderJob := &queue.Job{
		ID:        uuid.NewString(),
		VideoID:   record.ID,
		Kind:      queue.KindRender,
		StyleJSON: styleJSON(t),
	}
	result, err := f.processor.RenderVideo(context.Background(), renderJob, noProgress)
	if err != nil {
		t.Fatalf("RenderVideo failed: %v", err)
	}

	renderResult, ok := result.(processor.RenderResult)
	if !ok {
		t.Fatalf("unexpected result type %T", result)
	}
	if !strings.Contains(renderResult.OutputURL, "/files/output/"+record.ID+".rendered.mp4") {
		t.Fatalf("unexpected output URL %q", renderResult.OutputURL)
	}

	if len(f.runner.calls) != 1 {
		t.Fatalf("runner invoked %d times, want 1", len(f.runner.calls))
	}
	args := strings.Join(f.runner.calls[0], " ")
	if !strings.Contains(args, record.OriginalPath) {
		t.Fatalf("input path missing from ffmpeg args: %s", args)
	}
	if !strings.Contains(args, "-c:a copy") {
		t.Fatalf("audio copy flag missing: %s", args)
	}

	outputPath := filepath.Join(f.cfg.OutputDir(), record.ID+".rendered.mp4")
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	updated, err := f.service.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if updated.OutputPath != outputPath {
		t.Fatalf("output path not saved: %q", updated.OutputPath)
	}

	// The transient ASS script is removed after the burn.
	entries, err := os.ReadDir(f.cfg.TempDir())
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".ass") {
			t.Fatalf("temp ASS script left behind: %s", entry.Name())
		}
	}
}

func TestRenderVideoRequiresProcessedSubtitles(t *testing.T) {
	f := newFixture(t)
	record := f.insertVideo(t, 30)

	job := &queue.Job{ID: uuid.NewString(), VideoID: record.ID, Kind: queue.KindRender, StyleJSON: styleJSON(t)}
	_, err := f.processor.RenderVideo(context.Background(), job, noProgress)
	if err == nil || err.Error() != "Chinese subtitle not found. Run process first." {
		t.Fatalf("expected missing-subtitle error, got %v", err)
	}
	if len(f.runner.calls) != 0 {
		t.Fatal("runner must not run without subtitles")
	}
}

func TestRenderVideoUnknownVideo(t *testing.T) {
	f := newFixture(t)

	job := &queue.Job{ID: uuid.NewString(), VideoID: "missing", Kind: queue.KindRender, StyleJSON: styleJSON(t)}
	_, err := f.processor.RenderVideo(context.Background(), job, noProgress)
	if err == nil || err.Error() != "video not found" {
		t.Fatalf("expected \"video not found\", got %v", err)
	}
}

func TestRenderVideoRejectsEmptySubtitles(t *testing.T) {
	f := newFixture(t)
	record := f.insertVideo(t, 30)

	// Point the record at a VTT with no parseable cues.
	emptyVTT := filepath.Join(f.cfg.SubtitlesDir(), record.ID+".zh.vtt")
	if err := os.WriteFile(emptyVTT, []byte("WEBVTT\n"), 0o644); err != nil {
		t.Fatalf("write empty VTT: %v", err)
	}
	if err := f.videoStore.SaveSubtitles(context.Background(), record.ID, "", emptyVTT); err != nil {
		t.Fatalf("SaveSubtitles failed: %v", err)
	}

	job := &queue.Job{ID: uuid.NewString(), VideoID: record.ID, Kind: queue.KindRender, StyleJSON: styleJSON(t)}
	_, err := f.processor.RenderVideo(context.Background(), job, noProgress)
	if err == nil || err.Error() != "No subtitle cues found for rendering" {
		t.Fatalf("expected no-cues error, got %v", err)
	}
	if len(f.runner.calls) != 0 {
		t.Fatal("runner must not run without cues")
	}
}

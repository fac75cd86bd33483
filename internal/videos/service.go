package videos

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"autobbq/internal/config"
	"autobbq/internal/logging"
	"autobbq/internal/media"
	"autobbq/internal/media/ffprobe"
	"autobbq/internal/services"
)

// ProbeFunc inspects a media file; swapped out in tests.
type ProbeFunc func(ctx context.Context, binary, path string) (media.Metadata, error)

// Service owns upload ingestion and public URL mapping for video records.
type Service struct {
	cfg    *config.Config
	store  *Store
	logger *slog.Logger
	probe  ProbeFunc
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithProbe overrides how media files are probed (used in tests).
func WithProbe(probe ProbeFunc) ServiceOption {
	return func(s *Service) {
		if probe != nil {
			s.probe = probe
		}
	}
}

// NewService constructs the video service.
func NewService(cfg *config.Config, store *Store, logger *slog.Logger, opts ...ServiceOption) *Service {
	service := &Service{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "videos"),
		probe:  ffprobe.ProbeVideo,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Store exposes the record store for the pipeline stages.
func (s *Service) Store() *Store {
	return s.store
}

// CreateFromUpload validates an uploaded file already written to a
// temporary path, probes it, moves it into the uploads directory, and
// persists the record. The temporary file is removed on rejection.
func (s *Service) CreateFromUpload(ctx context.Context, tempPath, originalFilename, mimeType string) (*Record, error) {
	if !IsAllowedVideoFile(originalFilename, mimeType) {
		_ = os.Remove(tempPath)
		return nil, services.Wrap(services.ErrValidation, "upload", "validate",
			"unsupported file format; allowed: mp4, mov, webm", nil)
	}

	metadata, err := s.probe(ctx, s.cfg.Tools.FFprobe, tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, err
	}
	if !IsAllowedDuration(metadata.DurationSec, s.cfg.Uploads.MaxDurationSec) {
		_ = os.Remove(tempPath)
		return nil, services.Wrap(services.ErrValidation, "upload", "validate",
			fmt.Sprintf("video duration exceeds %g seconds", s.cfg.Uploads.MaxDurationSec), nil)
	}

	videoID := uuid.NewString()
	extension := strings.ToLower(filepath.Ext(originalFilename))
	finalPath, err := SafeJoin(s.cfg.UploadsDir(), videoID+extension)
	if err != nil {
		_ = os.Remove(tempPath)
		return nil, err
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("move upload into storage: %w", err)
	}

	record := &Record{
		ID:               videoID,
		OriginalFilename: originalFilename,
		MimeType:         mimeType,
		OriginalPath:     finalPath,
		DurationSec:      metadata.DurationSec,
		Width:            metadata.Width,
		Height:           metadata.Height,
		FPS:              metadata.FPS,
	}
	if err := s.store.Insert(ctx, record); err != nil {
		_ = os.Remove(finalPath)
		return nil, err
	}

	s.logger.Info("video ingested",
		logging.String("video_id", videoID),
		logging.Float64("duration_sec", metadata.DurationSec),
		logging.Int("width", metadata.Width),
		logging.Int("height", metadata.Height),
	)
	return record, nil
}

// Get fetches a record by id; nil when absent.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.store.GetByID(ctx, id)
}

// PublicFileURL maps an absolute storage path to its /files/... URL path.
// Paths outside the storage root yield an empty string.
func (s *Service) PublicFileURL(absolutePath string) string {
	if absolutePath == "" {
		return ""
	}
	relative, err := filepath.Rel(s.cfg.Paths.StorageDir, absolutePath)
	if err != nil || strings.HasPrefix(relative, "..") {
		return ""
	}
	return "/files/" + filepath.ToSlash(relative)
}

// AbsoluteFileURL prefixes a public file path with the configured base URL.
func (s *Service) AbsoluteFileURL(absolutePath string) string {
	public := s.PublicFileURL(absolutePath)
	if public == "" {
		return ""
	}
	return s.cfg.Paths.BaseURL + public
}

// SafeJoin joins a base directory with a filename, rejecting anything that
// would escape the base.
func SafeJoin(baseDir, filename string) (string, error) {
	cleaned := filepath.Base(filename)
	joined := filepath.Join(baseDir, cleaned)
	relative, err := filepath.Rel(baseDir, joined)
	if err != nil || strings.HasPrefix(relative, "..") || filepath.IsAbs(relative) {
		return "", services.Wrap(services.ErrValidation, "storage", "join", "invalid filename", nil)
	}
	return joined, nil
}

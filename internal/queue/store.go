package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"autobbq/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id            TEXT PRIMARY KEY,
    video_id      TEXT NOT NULL,
    kind          TEXT NOT NULL,
    status        TEXT NOT NULL,
    progress      REAL NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    result_json   TEXT NOT NULL DEFAULT '',
    style_json    TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON jobs(status, created_at);
`

const jobColumns = `id, video_id, kind, status, progress, error_message, result_json, style_json, created_at, updated_at`

// Store manages job persistence backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes or connects to the job database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	db, err := OpenDatabase(filepath.Join(cfg.DataDir(), "autobbq.db"))
	if err != nil {
		return nil, err
	}
	return NewStore(db)
}

// OpenDatabase opens the shared SQLite database with the pragmas every
// store in the process relies on.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// NewStore wraps an already opened database handle and applies the schema.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply jobs schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle so sibling stores can share it.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewProcessJob enqueues a transcription-stage job for a video.
func (s *Store) NewProcessJob(ctx context.Context, videoID string) (*Job, error) {
	return s.insert(ctx, videoID, KindProcess, "")
}

// NewRenderJob enqueues a render-stage job carrying the style payload.
func (s *Store) NewRenderJob(ctx context.Context, videoID, styleJSON string) (*Job, error) {
	return s.insert(ctx, videoID, KindRender, styleJSON)
}

func (s *Store) insert(ctx context.Context, videoID string, kind Kind, styleJSON string) (*Job, error) {
	if videoID == "" {
		return nil, errors.New("video id is required")
	}
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		Kind:      kind,
		Status:    StatusQueued,
		StyleJSON: styleJSON,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, video_id, kind, status, progress, error_message, result_json, style_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, '', '', ?, ?, ?)`,
		job.ID, job.VideoID, job.Kind, job.Status, job.StyleJSON,
		job.CreatedAt.Format(time.RFC3339Nano), job.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// GetByID fetches a job by identifier; nil when no such job exists.
func (s *Store) GetByID(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ClaimNext atomically transitions the oldest queued job to running and
// returns it. It returns nil when the queue is empty. The transition is
// guarded so two workers can never claim the same job.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY created_at, id LIMIT 1`,
		StatusQueued,
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select queued job: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusRunning, now.Format(time.RFC3339Nano), job.ID, StatusQueued,
	)
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("claim job rows: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	job.Status = StatusRunning
	job.UpdatedAt = now
	return job, nil
}

// RequeueInterrupted returns jobs left in the running state by a previous
// process to the queue so workers pick them up again. Both pipeline stages
// overwrite their artifacts, so a re-run is safe. Must only be called before
// any worker of this process has claimed a job.
func (s *Store) RequeueInterrupted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE status = ?`,
		StatusQueued, time.Now().UTC().Format(time.RFC3339Nano), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("requeue interrupted jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("requeue interrupted rows: %w", err)
	}
	return affected, nil
}

// SetProgress records a progress checkpoint. Values are clamped to [0,100]
// and never move backwards.
func (s *Store) SetProgress(ctx context.Context, id string, percent float64) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET progress = MAX(progress, ?), updated_at = ? WHERE id = ?`,
		percent, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

// MarkSucceeded finishes a job with its stage-specific result payload.
func (s *Store) MarkSucceeded(ctx context.Context, id, resultJSON string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress = 100, result_json = ?, updated_at = ? WHERE id = ?`,
		StatusSucceeded, resultJSON, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark succeeded: %w", err)
	}
	return nil
}

// MarkFailed finishes a job with the handler's error message captured
// verbatim. Failed jobs stay failed; retry is a caller responsibility.
func (s *Store) MarkFailed(ctx context.Context, id, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, message, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// List returns jobs ordered newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := ""
		for i, status := range statuses {
			if i > 0 {
				placeholders += ", "
			}
			placeholders += "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + placeholders + `)`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job       Job
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&job.ID, &job.VideoID, &job.Kind, &job.Status, &job.Progress,
		&job.ErrorMessage, &job.ResultJSON, &job.StyleJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		job.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		job.UpdatedAt = parsed
	}
	return &job, nil
}

package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
    id                TEXT PRIMARY KEY,
    original_filename TEXT NOT NULL,
    mime_type         TEXT NOT NULL,
    original_path     TEXT NOT NULL,
    duration_sec      REAL NOT NULL,
    width             INTEGER NOT NULL,
    height            INTEGER NOT NULL,
    fps               REAL NOT NULL,
    subtitle_en_path  TEXT NOT NULL DEFAULT '',
    subtitle_zh_path  TEXT NOT NULL DEFAULT '',
    output_path       TEXT NOT NULL DEFAULT '',
    created_at        TEXT NOT NULL,
    updated_at        TEXT NOT NULL
);
`

const videoColumns = `id, original_filename, mime_type, original_path, duration_sec, width, height, fps,
    subtitle_en_path, subtitle_zh_path, output_path, created_at, updated_at`

// Store manages video record persistence. It shares the queue's SQLite
// database handle.
type Store struct {
	db *sql.DB
}

// NewStore wraps an opened database handle and applies the schema.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply videos schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert persists a new video record.
func (s *Store) Insert(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO videos (`+videoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.OriginalFilename, record.MimeType, record.OriginalPath,
		record.DurationSec, record.Width, record.Height, record.FPS,
		record.SubtitleEnPath, record.SubtitleZhPath, record.OutputPath,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// GetByID fetches a video record by identifier; nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return record, nil
}

// List returns all video records, newest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveSubtitles records the generated subtitle file locations.
func (s *Store) SaveSubtitles(ctx context.Context, id, enPath, zhPath string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE videos SET subtitle_en_path = ?, subtitle_zh_path = ?, updated_at = ? WHERE id = ?`,
		enPath, zhPath, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("save subtitles: %w", err)
	}
	return requireRow(res)
}

// SaveOutput records the rendered video location. Concurrent renders of the
// same video are last-writer-wins by design.
func (s *Store) SaveOutput(ctx context.Context, id, outputPath string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE videos SET output_path = ?, updated_at = ? WHERE id = ?`,
		outputPath, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return errors.New("video not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record    Record
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&record.ID, &record.OriginalFilename, &record.MimeType, &record.OriginalPath,
		&record.DurationSec, &record.Width, &record.Height, &record.FPS,
		&record.SubtitleEnPath, &record.SubtitleZhPath, &record.OutputPath,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		record.UpdatedAt = parsed
	}
	return &record, nil
}

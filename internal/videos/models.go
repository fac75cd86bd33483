package videos

import (
	"time"

	"autobbq/internal/media"
)

// Record is a persisted uploaded video and the artifacts derived from it.
// Subtitle and output paths are empty until the corresponding pipeline
// stage has produced them.
type Record struct {
	ID               string
	OriginalFilename string
	MimeType         string
	OriginalPath     string
	DurationSec      float64
	Width            int
	Height           int
	FPS              float64
	SubtitleEnPath   string
	SubtitleZhPath   string
	OutputPath       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Metadata returns the probed video properties in the pipeline's shape.
func (r *Record) Metadata() media.Metadata {
	return media.Metadata{
		DurationSec: r.DurationSec,
		Width:       r.Width,
		Height:      r.Height,
		FPS:         r.FPS,
	}
}

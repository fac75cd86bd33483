package api

import (
	"encoding/json"
	"time"

	"autobbq/internal/queue"
	"autobbq/internal/videos"
)

// JobView is the external representation of a job.
type JobView struct {
	JobID    string          `json:"jobId"`
	Status   queue.Status    `json:"status"`
	Progress float64         `json:"progress"`
	Error    string          `json:"error,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

func newJobView(job queue.Job) JobView {
	view := JobView{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Error:    job.ErrorMessage,
	}
	if job.ResultJSON != "" {
		view.Result = json.RawMessage(job.ResultJSON)
	}
	return view
}

// VideoView is the external representation of a video record. Subtitle and
// output URLs are present once the corresponding stage has produced them.
type VideoView struct {
	VideoID       string  `json:"videoId"`
	OriginalURL   string  `json:"originalUrl"`
	DurationSec   float64 `json:"durationSec"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	FPS           float64 `json:"fps"`
	SubtitleEnURL string  `json:"subtitleEnUrl,omitempty"`
	SubtitleZhURL string  `json:"subtitleZhUrl,omitempty"`
	OutputURL     string  `json:"outputUrl,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func newVideoView(service *videos.Service, record *videos.Record) VideoView {
	return VideoView{
		VideoID:       record.ID,
		OriginalURL:   service.AbsoluteFileURL(record.OriginalPath),
		DurationSec:   record.DurationSec,
		Width:         record.Width,
		Height:        record.Height,
		FPS:           record.FPS,
		SubtitleEnURL: service.AbsoluteFileURL(record.SubtitleEnPath),
		SubtitleZhURL: service.AbsoluteFileURL(record.SubtitleZhPath),
		OutputURL:     service.AbsoluteFileURL(record.OutputPath),
		CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var statusSet = map[Status]struct{}{
	StatusQueued:    {},
	StatusRunning:   {},
	StatusSucceeded: {},
	StatusFailed:    {},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Kind selects which pipeline stage a job executes.
type Kind string

const (
	// KindProcess runs transcription, translation, and subtitle generation.
	KindProcess Kind = "processVideo"
	// KindRender burns the generated subtitles into a new video file.
	KindRender Kind = "renderVideo"
)

// Job is a persisted unit of pipeline work. Exactly one worker owns a
// running job; progress is monotonic and clamped to [0,100].
type Job struct {
	ID           string
	VideoID      string
	Kind         Kind
	Status       Status
	Progress     float64
	ErrorMessage string
	ResultJSON   string
	StyleJSON    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

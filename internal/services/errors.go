// Package services holds cross-cutting service concerns: the error
// taxonomy shared by the pipeline stages and their collaborators.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures of external binaries (ffmpeg, ffprobe).
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks rejected input: bad uploads, malformed style.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks deployment problems that no retry can fix,
	// such as an ffmpeg build without a usable subtitle filter.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing records or prerequisite artifacts.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks everything else; callers may re-enqueue.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

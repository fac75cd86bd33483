// Package ffprobe wraps the external ffprobe binary for media inspection.
package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"autobbq/internal/media"
	"autobbq/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", detail, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// ProbeVideo derives the pipeline's video metadata from an inspection. It
// fails when the container has no video stream or reports a zero duration.
func ProbeVideo(ctx context.Context, binary, path string) (media.Metadata, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return media.Metadata{}, err
	}
	return result.VideoMetadata()
}

// VideoMetadata extracts duration and first-video-stream geometry from an
// already parsed result.
func (r Result) VideoMetadata() (media.Metadata, error) {
	duration := parseFloat(r.Format.Duration)
	video := r.firstVideoStream()
	if video == nil || duration <= 0 {
		return media.Metadata{}, services.Wrap(services.ErrValidation, "ffprobe", "metadata", "unable to read video metadata", nil)
	}
	return media.Metadata{
		DurationSec: duration,
		Width:       video.Width,
		Height:      video.Height,
		FPS:         parseFrameRate(video.AvgFrameRate),
	}, nil
}

func (r Result) firstVideoStream() *Stream {
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, "video") {
			return &r.Streams[i]
		}
	}
	return nil
}

// parseFrameRate converts an ffprobe fraction such as "30000/1001" into
// frames per second, rounded to three decimals. Unparseable or zero-valued
// fractions yield 0.
func parseFrameRate(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0/0" {
		return 0
	}
	numStr, denStr, found := strings.Cut(raw, "/")
	if !found {
		return parseFloat(raw)
	}
	num := parseFloat(numStr)
	den := parseFloat(denStr)
	if den == 0 {
		return 0
	}
	rate := num / den
	return float64(int(rate*1000+0.5)) / 1000
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

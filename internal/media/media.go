// Package media holds shared media descriptions used across the pipeline.
package media

// Metadata describes the probed properties of an uploaded video.
type Metadata struct {
	DurationSec float64 `json:"durationSec"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FPS         float64 `json:"fps"`
}

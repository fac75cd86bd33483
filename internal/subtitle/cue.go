package subtitle

// Cue is a single timed subtitle line. Start and End are offsets in seconds
// from the beginning of the video.
type Cue struct {
	StartSec float64 `json:"startSec"`
	EndSec   float64 `json:"endSec"`
	Text     string  `json:"text"`
}

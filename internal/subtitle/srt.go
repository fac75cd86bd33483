package subtitle

import (
	"strconv"
	"strings"
)

// GenerateSRT encodes cues as a SubRip document with 1-based sequence
// numbers and comma decimal separators in the timestamps.
func GenerateSRT(cues []Cue) string {
	var lines []string
	for index, cue := range cues {
		lines = append(lines, strconv.Itoa(index+1))
		lines = append(lines, SRTTimestamp(cue.StartSec)+" --> "+SRTTimestamp(cue.EndSec))
		lines = append(lines, cue.Text)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

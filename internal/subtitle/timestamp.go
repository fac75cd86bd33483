package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// VTTTimestamp renders seconds as HH:MM:SS.mmm. Fractional milliseconds are
// truncated, not rounded, so a generated file re-parses to the same value.
func VTTTimestamp(sec float64) string {
	hours := int(sec / 3600)
	minutes := int(math.Mod(sec, 3600) / 60)
	seconds := int(math.Mod(sec, 60))
	millis := int(math.Mod(sec, 1) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// SRTTimestamp renders seconds as HH:MM:SS,mmm (comma decimal separator).
func SRTTimestamp(sec float64) string {
	return strings.Replace(VTTTimestamp(sec), ".", ",", 1)
}

// ASSTimestamp renders seconds as H:MM:SS.cc (centiseconds, hours unpadded).
func ASSTimestamp(sec float64) string {
	hours := int(sec / 3600)
	minutes := int(math.Mod(sec, 3600) / 60)
	seconds := int(math.Mod(sec, 60))
	centis := int(math.Mod(sec, 1) * 100)
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// parseTimestamp converts HH:MM:SS.mmm (or the SRT comma variant) into
// seconds. Anything that does not look like a three-part clock value yields
// zero; the caller treats the cue as best-effort rather than rejecting it.
func parseTimestamp(value string) float64 {
	normalized := strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	parts := strings.Split(normalized, ":")
	if len(parts) != 3 {
		return 0
	}
	total := 0.0
	multipliers := []float64{3600, 60, 1}
	for i, part := range parts {
		parsed, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0
		}
		total += parsed * multipliers[i]
	}
	return total
}

package subtitle

import "strings"

// GenerateVTT encodes cues as a WebVTT document.
func GenerateVTT(cues []Cue) string {
	lines := []string{"WEBVTT", ""}
	for _, cue := range cues {
		lines = append(lines, VTTTimestamp(cue.StartSec)+" --> "+VTTTimestamp(cue.EndSec))
		lines = append(lines, cue.Text)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// ParseVTT decodes a WebVTT document into cues. The scanner skips blank
// lines and the WEBVTT marker, recognizes a timing line by the "-->" arrow,
// and drops any cue-settings suffix after the timestamps. Text lines up to
// the next blank line are joined with newlines and trimmed; a timing line
// with no following text yields an empty-text cue.
func ParseVTT(content string) []Cue {
	normalized := strings.TrimSpace(strings.ReplaceAll(content, "\r", ""))
	if normalized == "" {
		return nil
	}

	lines := strings.Split(normalized, "\n")
	var cues []Cue
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || line == "WEBVTT" {
			i++
			continue
		}
		if !strings.Contains(line, "-->") {
			i++
			continue
		}

		startRaw, endRaw, _ := strings.Cut(line, "-->")
		start := firstToken(startRaw)
		end := firstToken(endRaw)

		var textLines []string
		i++
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, lines[i])
			i++
		}

		cues = append(cues, Cue{
			StartSec: parseTimestamp(start),
			EndSec:   parseTimestamp(end),
			Text:     strings.TrimSpace(strings.Join(textLines, "\n")),
		})
		i++
	}
	return cues
}

func firstToken(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

package subtitle

import (
	"strings"
	"unicode/utf8"
)

// Glyph width approximations shared by the burn-in strategies. Character
// budgets derive from pixel width as videoWidth*maxWidthRatio/(fontSize*ratio).
// The preview renderer uses the same constants; keep them here rather than
// duplicating the heuristic per call site.
const (
	DrawtextGlyphRatio = 0.75
	ASSGlyphRatio      = 0.8
)

// MaxCharsPerLine computes the character budget for wrapped subtitle lines.
func MaxCharsPerLine(videoWidth int, maxWidthRatio float64, fontSize int, glyphRatio float64) int {
	glyphWidth := float64(fontSize) * glyphRatio
	if glyphWidth < 1 {
		glyphWidth = 1
	}
	return int(float64(videoWidth) * maxWidthRatio / glyphWidth)
}

// WrapText splits text into greedy whitespace-delimited lines of at most
// maxCharsPerLine characters. A single word longer than the budget is left
// on its own line unsplit. Budgets below 8 disable wrapping entirely.
func WrapText(text string, maxCharsPerLine int) []string {
	if maxCharsPerLine < 8 {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) <= 1 {
		return []string{text}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if utf8.RuneCountInString(candidate) <= maxCharsPerLine {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

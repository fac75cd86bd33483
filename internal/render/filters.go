package render

import (
	"fmt"
	"math"
	"strings"

	"autobbq/internal/media"
	"autobbq/internal/subtitle"
)

func escapeFilterPath(value string) string {
	replacer := strings.NewReplacer(
		`\`, "/",
		"'", `\\'`,
		":", `\:`,
		",", `\,`,
		"[", `\[`,
		"]", `\]`,
	)
	return replacer.Replace(value)
}

func escapeDrawtextValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"'", `\'`,
		":", `\:`,
		",", `\,`,
		"%", `\%`,
		"[", `\[`,
		"]", `\]`,
		"\n", `\n`,
	)
	return replacer.Replace(value)
}

// drawtextXExpression builds the horizontal anchor expression for one
// alignment mode. All variants clamp into [0, w-text_w].
func drawtextXExpression(align subtitle.Align, xPx int, maxWidthRatio float64, videoWidth int) string {
	switch align {
	case subtitle.AlignLeft:
		leftAnchor := int(math.Round(float64(xPx) - float64(videoWidth)*maxWidthRatio/2))
		return fmt.Sprintf("max(0,min(w-text_w,%d))", leftAnchor)
	case subtitle.AlignRight:
		rightAnchor := int(math.Round(float64(xPx) + float64(videoWidth)*maxWidthRatio/2))
		return fmt.Sprintf("max(0,min(w-text_w,%d-text_w))", rightAnchor)
	default:
		return fmt.Sprintf("max(0,min(w-text_w,%d-text_w/2))", xPx)
	}
}

// buildDrawtextFilter constructs the full per-cue drawtext filter chain.
// Audio is untouched; all cues render in a single video pass, each gated by
// a between(t,start,end) enable expression.
func buildDrawtextFilter(cues []subtitle.Cue, style subtitle.StyleConfig, meta media.Metadata, fontFile string) string {
	fontSize := int(math.Round(style.FontSize))
	outline := style.OutlineWidth()
	shadowOpacity := style.ShadowOpacity()
	maxWidthRatio := style.MaxWidthRatio
	if maxWidthRatio == 0 {
		maxWidthRatio = 0.9
	}
	xPx := int(math.Round(style.Position.X * float64(meta.Width)))
	yPx := int(math.Round(style.Position.Y * float64(meta.Height)))
	maxChars := subtitle.MaxCharsPerLine(meta.Width, maxWidthRatio, fontSize, subtitle.DrawtextGlyphRatio)
	fontColor := subtitle.NormalizeHexColor(style.FontColor, "#ffffff")
	xExpression := drawtextXExpression(style.TextAlign, xPx, maxWidthRatio, meta.Width)

	filters := make([]string, 0, len(cues))
	for _, cue := range cues {
		wrapped := strings.Join(subtitle.WrapText(cue.Text, maxChars), "\n")
		escaped := escapeDrawtextValue(wrapped)

		options := []string{
			fmt.Sprintf("text='%s'", escaped),
			fmt.Sprintf("fontsize=%d", fontSize),
			fmt.Sprintf("fontcolor=%s", fontColor),
			fmt.Sprintf("borderw=%g", outline),
			"bordercolor=black",
			"line_spacing=6",
			"box=1",
			"boxcolor=black@0.35",
			"boxborderw=12",
			fmt.Sprintf("x='%s'", xExpression),
			fmt.Sprintf("y='max(0,min(h-text_h,%d-text_h/2))'", yPx),
			fmt.Sprintf("enable='between(t,%.3f,%.3f)'", cue.StartSec, cue.EndSec),
		}
		if fontFile != "" {
			options = append(options, fmt.Sprintf("fontfile='%s'", escapeFilterPath(fontFile)))
		}
		if shadowOpacity > 0 {
			options = append(options, "shadowx=2", "shadowy=2", fmt.Sprintf("shadowcolor=black@%.2f", shadowOpacity))
		}

		filters = append(filters, "drawtext="+strings.Join(options, ":"))
	}
	return strings.Join(filters, ",")
}

func buildASSFilter(assPath string) string {
	return fmt.Sprintf("ass=filename='%s'", escapeFilterPath(assPath))
}

package subtitle

import (
	"fmt"
	"math"
	"strings"

	"autobbq/internal/media"
)

// ASSColor encodes a #RRGGBB color plus an opacity as the ASS &HAABBGGRR
// form: alpha byte first (round((1-opacity)*255)), then blue, green, red.
func ASSColor(hexRGB string, opacity float64) string {
	cleaned := strings.TrimPrefix(NormalizeHexColor(hexRGB, "#FFFFFF"), "#")
	cleaned = strings.ToUpper(cleaned)
	alpha := int(math.Round((1 - opacity) * 255))
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 255 {
		alpha = 255
	}
	rr, gg, bb := cleaned[0:2], cleaned[2:4], cleaned[4:6]
	return fmt.Sprintf("&H%02X%s%s%s", alpha, bb, gg, rr)
}

func assAlignment(align Align) int {
	switch align {
	case AlignLeft:
		return 4
	case AlignRight:
		return 6
	default:
		return 5
	}
}

func assAlignmentTag(align Align) string {
	return fmt.Sprintf(`\an%d`, assAlignment(align))
}

func escapeASSText(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		"{", `\{`,
		"}", `\}`,
		"\n", `\N`,
	)
	return replacer.Replace(value)
}

// GenerateASS builds a complete ASS script from cues, a normalized style,
// and the probed video metadata. PlayResX/Y track the source frame so the
// style's fractional position maps 1:1 onto pixels.
func GenerateASS(cues []Cue, style StyleConfig, meta media.Metadata) string {
	playResX := max(1, meta.Width)
	playResY := max(1, meta.Height)
	fontSize := int(math.Round(style.FontSize))
	outline := style.OutlineWidth()

	shadowDepth := 0
	shadowOpacity := 0.3
	if style.Shadow != nil {
		shadowOpacity = math.Min(1, math.Max(0, style.Shadow.Opacity))
	}
	if style.Shadow != nil && style.Shadow.Enabled {
		shadowDepth = max(1, int(math.Round(style.Shadow.Opacity*5)))
	}

	maxWidthRatio := style.MaxWidthRatio
	if maxWidthRatio == 0 {
		maxWidthRatio = 0.9
	}
	sideMargin := max(0, int(math.Round((1-maxWidthRatio)*float64(playResX)/2)))
	xPx := int(math.Round(style.Position.X * float64(playResX)))
	yPx := int(math.Round(style.Position.Y * float64(playResY)))
	maxChars := MaxCharsPerLine(playResX, maxWidthRatio, fontSize, ASSGlyphRatio)
	fontColor := NormalizeHexColor(style.FontColor, "#FFFFFF")

	fontFamily := style.FontFamily
	if fontFamily == "" {
		fontFamily = "Noto Sans SC"
	}

	styleLine := fmt.Sprintf(
		"Style: Default,%s,%d,%s,%s,%s,%s,0,0,%g,%d,0,100,100,0,0,1,2,%d,%d,%d,0,1",
		fontFamily,
		fontSize,
		ASSColor(fontColor, 1),
		ASSColor(fontColor, 1),
		ASSColor("#000000", shadowOpacity),
		ASSColor("#000000", 1),
		outline,
		shadowDepth,
		assAlignment(style.TextAlign),
		sideMargin,
		sideMargin,
	)

	lines := []string{
		"[Script Info]",
		"ScriptType: v4.00+",
		fmt.Sprintf("PlayResX: %d", playResX),
		fmt.Sprintf("PlayResY: %d", playResY),
		"ScaledBorderAndShadow: yes",
		"",
		"[V4+ Styles]",
		"Format: Name,Fontname,Fontsize,PrimaryColour,SecondaryColour,OutlineColour,BackColour,Bold,Italic,Underline,StrikeOut,ScaleX,ScaleY,Spacing,Angle,BorderStyle,Outline,Shadow,Alignment,MarginL,MarginR,MarginV,Encoding",
		styleLine,
		"",
		"[Events]",
		"Format: Layer,Start,End,Style,Name,MarginL,MarginR,MarginV,Effect,Text",
	}

	alignTag := assAlignmentTag(style.TextAlign)
	for _, cue := range cues {
		wrapped := strings.Join(WrapText(cue.Text, maxChars), "\n")
		escaped := escapeASSText(wrapped)
		lines = append(lines, fmt.Sprintf(
			"Dialogue: 0,%s,%s,Default,,0,0,0,,{%s\\pos(%d,%d)}%s",
			ASSTimestamp(cue.StartSec),
			ASSTimestamp(cue.EndSec),
			alignTag,
			xPx,
			yPx,
			escaped,
		))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

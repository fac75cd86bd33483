package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

// Align selects the horizontal anchor for burned-in subtitle text.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Position places the subtitle anchor as a fraction of the frame size.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke configures the text outline.
type Stroke struct {
	Enabled bool    `json:"enabled"`
	Width   float64 `json:"width"`
}

// Shadow configures the drop shadow behind subtitle text.
type Shadow struct {
	Enabled bool    `json:"enabled"`
	Opacity float64 `json:"opacity"`
}

// StyleConfig describes how subtitles are rendered onto the video. Optional
// sections left nil or empty receive defaults in Normalize. The config is
// immutable for the duration of one render.
type StyleConfig struct {
	FontSize      float64  `json:"fontSize"`
	Position      Position `json:"position"`
	MaxWidthRatio float64  `json:"maxWidthRatio,omitempty"`
	Stroke        *Stroke  `json:"stroke,omitempty"`
	Shadow        *Shadow  `json:"shadow,omitempty"`
	FontFamily    string   `json:"fontFamily,omitempty"`
	FontColor     string   `json:"fontColor,omitempty"`
	TextAlign     Align    `json:"textAlign,omitempty"`
}

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{6})$`)

// Normalize applies defaults to unset fields and validates the ranges the
// API accepts. It mutates the receiver in place.
func (s *StyleConfig) Normalize() error {
	if s.FontSize < 12 || s.FontSize > 120 {
		return fmt.Errorf("fontSize must be between 12 and 120, got %g", s.FontSize)
	}
	if s.Position.X < 0 || s.Position.X > 1 || s.Position.Y < 0 || s.Position.Y > 1 {
		return fmt.Errorf("position coordinates must be within [0,1], got (%g, %g)", s.Position.X, s.Position.Y)
	}
	if s.MaxWidthRatio == 0 {
		s.MaxWidthRatio = 0.9
	}
	if s.MaxWidthRatio < 0.25 || s.MaxWidthRatio > 1 {
		return fmt.Errorf("maxWidthRatio must be between 0.25 and 1, got %g", s.MaxWidthRatio)
	}
	if s.Stroke == nil {
		s.Stroke = &Stroke{Enabled: true, Width: 2}
	}
	if s.Stroke.Width < 0 || s.Stroke.Width > 10 {
		return fmt.Errorf("stroke width must be between 0 and 10, got %g", s.Stroke.Width)
	}
	if s.Shadow == nil {
		s.Shadow = &Shadow{Enabled: true, Opacity: 0.3}
	}
	if s.Shadow.Opacity < 0 || s.Shadow.Opacity > 1 {
		return fmt.Errorf("shadow opacity must be between 0 and 1, got %g", s.Shadow.Opacity)
	}
	if strings.TrimSpace(s.FontFamily) == "" {
		s.FontFamily = "Noto Sans SC"
	}
	if s.FontColor == "" {
		s.FontColor = "#ffffff"
	}
	if !hexColorPattern.MatchString(s.FontColor) {
		return fmt.Errorf("fontColor must be a hex color like #ffffff, got %q", s.FontColor)
	}
	switch s.TextAlign {
	case "":
		s.TextAlign = AlignCenter
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("textAlign must be left, center, or right, got %q", s.TextAlign)
	}
	return nil
}

// NormalizeHexColor validates a #RRGGBB color and lowercases its digits,
// falling back when the input does not match.
func NormalizeHexColor(value, fallback string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		raw = fallback
	}
	if !hexColorPattern.MatchString(raw) {
		return fallback
	}
	return "#" + strings.ToLower(raw[1:])
}

// OutlineWidth returns the effective outline width, zero when disabled.
func (s StyleConfig) OutlineWidth() float64 {
	if s.Stroke == nil || !s.Stroke.Enabled || s.Stroke.Width < 0 {
		return 0
	}
	return s.Stroke.Width
}

// ShadowOpacity returns the effective shadow opacity clamped to [0,1],
// zero when disabled.
func (s StyleConfig) ShadowOpacity() float64 {
	if s.Shadow == nil || !s.Shadow.Enabled {
		return 0
	}
	opacity := s.Shadow.Opacity
	if opacity < 0 {
		return 0
	}
	if opacity > 1 {
		return 1
	}
	return opacity
}

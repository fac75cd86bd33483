package subtitle_test

import (
	"strings"
	"testing"

	"autobbq/internal/subtitle"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	style := subtitle.StyleConfig{
		FontSize: 48,
		Position: subtitle.Position{X: 0.5, Y: 0.9},
	}
	if err := style.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if style.MaxWidthRatio != 0.9 {
		t.Errorf("maxWidthRatio default = %g, want 0.9", style.MaxWidthRatio)
	}
	if style.Stroke == nil || !style.Stroke.Enabled || style.Stroke.Width != 2 {
		t.Errorf("stroke default = %+v", style.Stroke)
	}
	if style.Shadow == nil || !style.Shadow.Enabled || style.Shadow.Opacity != 0.3 {
		t.Errorf("shadow default = %+v", style.Shadow)
	}
	if style.FontFamily != "Noto Sans SC" {
		t.Errorf("fontFamily default = %q", style.FontFamily)
	}
	if style.FontColor != "#ffffff" {
		t.Errorf("fontColor default = %q", style.FontColor)
	}
	if style.TextAlign != subtitle.AlignCenter {
		t.Errorf("textAlign default = %q", style.TextAlign)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		style subtitle.StyleConfig
		want  string
	}{
		{"font too small", subtitle.StyleConfig{FontSize: 8, Position: subtitle.Position{X: 0.5, Y: 0.5}}, "fontSize"},
		{"font too big", subtitle.StyleConfig{FontSize: 130, Position: subtitle.Position{X: 0.5, Y: 0.5}}, "fontSize"},
		{"position out of range", subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 1.5, Y: 0.5}}, "position"},
		{"narrow ratio", subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 0.5, Y: 0.5}, MaxWidthRatio: 0.1}, "maxWidthRatio"},
		{"bad color", subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 0.5, Y: 0.5}, FontColor: "red"}, "fontColor"},
		{"bad align", subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 0.5, Y: 0.5}, TextAlign: "middle"}, "textAlign"},
		{"stroke width", subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 0.5, Y: 0.5}, Stroke: &subtitle.Stroke{Enabled: true, Width: 20}}, "stroke"},
		{"shadow opacity", subtitle.StyleConfig{FontSize: 48, Position: subtitle.Position{X: 0.5, Y: 0.5}, Shadow: &subtitle.Shadow{Enabled: true, Opacity: 2}}, "shadow"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.style.Normalize()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestNormalizeHexColor(t *testing.T) {
	if got := subtitle.NormalizeHexColor("#ABCdef", "#ffffff"); got != "#abcdef" {
		t.Errorf("NormalizeHexColor lowercase = %q", got)
	}
	if got := subtitle.NormalizeHexColor("nope", "#ffffff"); got != "#ffffff" {
		t.Errorf("NormalizeHexColor fallback = %q", got)
	}
	if got := subtitle.NormalizeHexColor("", "#000000"); got != "#000000" {
		t.Errorf("NormalizeHexColor empty = %q", got)
	}
}

func TestOutlineAndShadowAccessors(t *testing.T) {
	style := subtitle.StyleConfig{
		Stroke: &subtitle.Stroke{Enabled: false, Width: 3},
		Shadow: &subtitle.Shadow{Enabled: false, Opacity: 0.5},
	}
	if style.OutlineWidth() != 0 {
		t.Error("disabled stroke must yield 0 outline")
	}
	if style.ShadowOpacity() != 0 {
		t.Error("disabled shadow must yield 0 opacity")
	}

	style.Stroke.Enabled = true
	style.Shadow.Enabled = true
	if style.OutlineWidth() != 3 {
		t.Errorf("OutlineWidth = %g, want 3", style.OutlineWidth())
	}
	if style.ShadowOpacity() != 0.5 {
		t.Errorf("ShadowOpacity = %g, want 0.5", style.ShadowOpacity())
	}
}

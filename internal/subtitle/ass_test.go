package subtitle_test

import (
	"strings"
	"testing"

	"autobbq/internal/media"
	"autobbq/internal/subtitle"
)

func TestASSColor(t *testing.T) {
	cases := []struct {
		hex      string
		opacity  float64
		expected string
	}{
		{"#00ffaa", 1, "&H00AAFF00"},
		{"#ffffff", 1, "&H00FFFFFF"},
		{"#000000", 0, "&HFF000000"},
		{"#ff0000", 0.5, "&H800000FF"},
	}
	for _, tc := range cases {
		if got := subtitle.ASSColor(tc.hex, tc.opacity); got != tc.expected {
			t.Errorf("ASSColor(%q, %g) = %q, want %q", tc.hex, tc.opacity, got, tc.expected)
		}
	}
}

func TestASSColorFallsBackOnBadInput(t *testing.T) {
	if got := subtitle.ASSColor("not-a-color", 1); got != "&H00FFFFFF" {
		t.Fatalf("ASSColor fallback = %q, want &H00FFFFFF", got)
	}
}

func normalizedStyle(t *testing.T, mutate func(*subtitle.StyleConfig)) subtitle.StyleConfig {
	t.Helper()
	style := subtitle.StyleConfig{
		FontSize: 48,
		Position: subtitle.Position{X: 0.5, Y: 0.9},
	}
	if mutate != nil {
		mutate(&style)
	}
	if err := style.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return style
}

func TestGenerateASSScript(t *testing.T) {
	style := normalizedStyle(t, nil)
	meta := media.Metadata{DurationSec: 10, Width: 1280, Height: 720, FPS: 30}
	cues := []subtitle.Cue{{StartSec: 0, EndSec: 2.5, Text: "你好，世界"}}

	script := subtitle.GenerateASS(cues, style, meta)

	for _, want := range []string{
		"[Script Info]",
		"PlayResX: 1280",
		"PlayResY: 720",
		"ScaledBorderAndShadow: yes",
		"[V4+ Styles]",
		"[Events]",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}

	// Center alignment is \an5; 0.5/0.9 of 1280x720 anchors at (640,648).
	if !strings.Contains(script, `{\an5\pos(640,648)}`) {
		t.Errorf("missing position override tag in:\n%s", script)
	}
	if !strings.Contains(script, "Dialogue: 0,0:00:00.00,0:00:02.50,Default,,0,0,0,,") {
		t.Errorf("missing dialogue timing in:\n%s", script)
	}
	if !strings.Contains(script, "你好，世界") {
		t.Error("cue text dropped from script")
	}
	// 90% width leaves 5% margin per side: 64px at 1280.
	if !strings.Contains(script, ",5,64,64,0,1") {
		t.Errorf("style line margins wrong in:\n%s", script)
	}
}

func TestGenerateASSAlignmentCodes(t *testing.T) {
	meta := media.Metadata{DurationSec: 10, Width: 1280, Height: 720}
	cues := []subtitle.Cue{{StartSec: 0, EndSec: 1, Text: "x"}}

	cases := []struct {
		align subtitle.Align
		tag   string
	}{
		{subtitle.AlignLeft, `\an4`},
		{subtitle.AlignCenter, `\an5`},
		{subtitle.AlignRight, `\an6`},
	}
	for _, tc := range cases {
		style := normalizedStyle(t, func(s *subtitle.StyleConfig) { s.TextAlign = tc.align })
		script := subtitle.GenerateASS(cues, style, meta)
		if !strings.Contains(script, "{"+tc.tag+`\pos(`) {
			t.Errorf("align %q: script missing %q", tc.align, tc.tag)
		}
	}
}

func TestGenerateASSEscapesBraces(t *testing.T) {
	style := normalizedStyle(t, nil)
	meta := media.Metadata{DurationSec: 10, Width: 1280, Height: 720}
	cues := []subtitle.Cue{{StartSec: 0, EndSec: 1, Text: "curly {tag} here"}}

	script := subtitle.GenerateASS(cues, style, meta)
	if !strings.Contains(script, `curly \{tag\} here`) {
		t.Fatalf("braces not escaped in:\n%s", script)
	}
}

func TestGenerateASSShadowDepth(t *testing.T) {
	meta := media.Metadata{DurationSec: 10, Width: 1280, Height: 720}
	cues := []subtitle.Cue{{StartSec: 0, EndSec: 1, Text: "x"}}

	noShadow := normalizedStyle(t, func(s *subtitle.StyleConfig) {
		s.Shadow = &subtitle.Shadow{Enabled: false}
	})
	script := subtitle.GenerateASS(cues, noShadow, meta)
	if !strings.Contains(script, ",0,0,2,0,0,100,100,") {
		t.Errorf("disabled shadow should have depth 0 in:\n%s", script)
	}

	deepShadow := normalizedStyle(t, func(s *subtitle.StyleConfig) {
		s.Shadow = &subtitle.Shadow{Enabled: true, Opacity: 1}
	})
	script = subtitle.GenerateASS(cues, deepShadow, meta)
	if !strings.Contains(script, ",0,0,2,5,0,100,100,") {
		t.Errorf("full-opacity shadow should have depth 5 in:\n%s", script)
	}
}

package subtitle_test

import (
	"math"
	"strings"
	"testing"

	"autobbq/internal/subtitle"
)

func TestGenerateVTTLayout(t *testing.T) {
	cues := []subtitle.Cue{
		{StartSec: 0, EndSec: 2, Text: "Hello there"},
		{StartSec: 2.5, EndSec: 5, Text: "第二句"},
	}
	content := subtitle.GenerateVTT(cues)

	if !strings.HasPrefix(content, "WEBVTT\n\n") {
		t.Fatalf("expected WEBVTT header, got %q", content[:20])
	}
	if !strings.Contains(content, "00:00:00.000 --> 00:00:02.000\nHello there") {
		t.Fatalf("missing first cue block in:\n%s", content)
	}
	if !strings.Contains(content, "00:00:02.500 --> 00:00:05.000\n第二句") {
		t.Fatalf("missing second cue block in:\n%s", content)
	}
}

func TestVTTRoundTrip(t *testing.T) {
	original := []subtitle.Cue{
		{StartSec: 0, EndSec: 2.25, Text: "First line"},
		{StartSec: 3.5, EndSec: 7.125, Text: "你好世界"},
		{StartSec: 61.75, EndSec: 65, Text: "Last one"},
	}
	parsed := subtitle.ParseVTT(subtitle.GenerateVTT(original))

	if len(parsed) != len(original) {
		t.Fatalf("round trip produced %d cues, want %d", len(parsed), len(original))
	}
	for i := range original {
		if math.Abs(parsed[i].StartSec-original[i].StartSec) > 0.001 {
			t.Errorf("cue %d start %g, want %g", i, parsed[i].StartSec, original[i].StartSec)
		}
		if math.Abs(parsed[i].EndSec-original[i].EndSec) > 0.001 {
			t.Errorf("cue %d end %g, want %g", i, parsed[i].EndSec, original[i].EndSec)
		}
		if parsed[i].Text != original[i].Text {
			t.Errorf("cue %d text %q, want %q", i, parsed[i].Text, original[i].Text)
		}
	}
}

func TestParseVTTJoinsMultilineText(t *testing.T) {
	content := "WEBVTT\n\n00:00:01.000 --> 00:00:03.000\nline one\nline two\n\n"
	cues := subtitle.ParseVTT(content)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Text != "line one\nline two" {
		t.Fatalf("unexpected text %q", cues[0].Text)
	}
}

func TestParseVTTIgnoresCueSettings(t *testing.T) {
	content := "WEBVTT\n\n00:00:01.000 --> 00:00:03.000 align:center position:50%\nhello\n"
	cues := subtitle.ParseVTT(content)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].StartSec != 1 || cues[0].EndSec != 3 {
		t.Fatalf("unexpected timing %g --> %g", cues[0].StartSec, cues[0].EndSec)
	}
}

func TestParseVTTMalformedTimestampYieldsZero(t *testing.T) {
	content := "WEBVTT\n\nnonsense --> 00:00:02.000\nstill kept\n"
	cues := subtitle.ParseVTT(content)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].StartSec != 0 {
		t.Fatalf("malformed start should parse to 0, got %g", cues[0].StartSec)
	}
	if cues[0].EndSec != 2 {
		t.Fatalf("valid end should survive, got %g", cues[0].EndSec)
	}
	if cues[0].Text != "still kept" {
		t.Fatalf("unexpected text %q", cues[0].Text)
	}
}

func TestParseVTTEmptyInput(t *testing.T) {
	if cues := subtitle.ParseVTT(""); cues != nil {
		t.Fatalf("expected nil for empty input, got %v", cues)
	}
	if cues := subtitle.ParseVTT("WEBVTT\n"); len(cues) != 0 {
		t.Fatalf("expected no cues for header-only input, got %v", cues)
	}
}

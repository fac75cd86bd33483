package providers

import (
	"context"
	"math"

	"autobbq/internal/subtitle"
)

var sampleEnglish = []string{
	"Hello everyone, welcome to this demo video.",
	"This MVP extracts English speech and translates it into Chinese subtitles.",
	"You can edit subtitle style before rendering the final video.",
	"Click render to burn subtitles into the output file.",
}

var sampleChinese = map[string]string{
	"Hello everyone, welcome to this demo video.":                              "大家好，欢迎来到这个演示视频。",
	"This MVP extracts English speech and translates it into Chinese subtitles.": "这个 MVP 会提取英文语音并翻译成中文字幕。",
	"You can edit subtitle style before rendering the final video.":            "在生成最终视频前，你可以调整字幕样式。",
	"Click render to burn subtitles into the output file.":                     "点击生成即可将字幕烧录到输出视频中。",
}

// MockASR emits deterministic sample cues segmented evenly over the video
// duration. Useful for local development without an API key.
type MockASR struct{}

// Transcribe implements ASR.
func (MockASR) Transcribe(_ context.Context, _ string, durationSec float64) ([]subtitle.Cue, error) {
	cueCount := int(math.Ceil(durationSec / 12))
	if cueCount < 2 {
		cueCount = 2
	}
	if cueCount > len(sampleEnglish) {
		cueCount = len(sampleEnglish)
	}

	segment := durationSec / float64(cueCount)
	cues := make([]subtitle.Cue, 0, cueCount)
	for index := 0; index < cueCount; index++ {
		start := roundMillis(float64(index) * segment)
		end := roundMillis(math.Min(durationSec, float64(index+1)*segment-0.1))
		if end < start+1 {
			end = start + 1
		}
		cues = append(cues, subtitle.Cue{
			StartSec: start,
			EndSec:   end,
			Text:     sampleEnglish[index],
		})
	}
	return cues, nil
}

// MockTranslator returns canned Chinese for the sample lines and a marked
// passthrough for anything else.
type MockTranslator struct{}

// Translate implements Translator.
func (MockTranslator) Translate(_ context.Context, texts []string) ([]string, error) {
	translated := make([]string, len(texts))
	for index, text := range texts {
		if zh, ok := sampleChinese[text]; ok {
			translated[index] = zh
			continue
		}
		translated[index] = "【中文翻译】" + text
	}
	return translated, nil
}

func roundMillis(value float64) float64 {
	return math.Round(value*1000) / 1000
}

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"autobbq/internal/config"
	"autobbq/internal/logging"
	"autobbq/internal/services"
	"autobbq/internal/subtitle"
)

// OpenAIClient talks to an OpenAI-compatible API. Both providers share one
// client so connection settings live in a single place.
type OpenAIClient struct {
	cfg        config.OpenAI
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIClient constructs a client from the [openai] config section.
func NewOpenAIClient(cfg config.OpenAI, logger *slog.Logger) *OpenAIClient {
	timeout := 120 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "openai"),
	}
}

func (c *OpenAIClient) requireKey() error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "openai", "auth",
			"OPENAI_API_KEY is required for the openai provider", nil)
	}
	return nil
}

// OpenAIASR transcribes speech via the /audio/transcriptions endpoint.
type OpenAIASR struct {
	client *OpenAIClient
}

type transcriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type transcriptionResponse struct {
	Segments []transcriptionSegment `json:"segments"`
}

// Transcribe implements ASR.
func (a *OpenAIASR) Transcribe(ctx context.Context, mediaPath string, _ float64) ([]subtitle.Cue, error) {
	if err := a.client.requireKey(); err != nil {
		return nil, err
	}

	file, err := os.Open(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("open media for transcription: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(mediaPath))
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read media for transcription: %w", err)
	}
	fields := map[string]string{
		"model":           a.client.cfg.ASRModel,
		"response_format": "verbose_json",
		"language":        "en",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("build transcription request: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.client.cfg.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+a.client.cfg.APIKey)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	payload, err := a.client.do(request)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "openai", "transcribe", "", err)
	}

	var decoded transcriptionResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	cues := make([]subtitle.Cue, 0, len(decoded.Segments))
	for _, segment := range decoded.Segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		cues = append(cues, subtitle.Cue{
			StartSec: segment.Start,
			EndSec:   segment.End,
			Text:     text,
		})
	}
	return cues, nil
}

// OpenAITranslator translates batches via chat completions. The model is
// asked for a JSON string array; replies that do not parse fall back to
// per-line requests.
type OpenAITranslator struct {
	client *OpenAIClient
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const (
	batchTranslateSystemPrompt = "Translate each English string to Simplified Chinese. Output ONLY a JSON array of strings in the same order, no extra text."
	lineTranslateSystemPrompt  = "Translate English to Simplified Chinese. Return only translated text with no explanation."
)

// Translate implements Translator.
func (t *OpenAITranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if err := t.client.requireKey(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return []string{}, nil
	}

	batchInput, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("encode translation batch: %w", err)
	}
	content, err := t.chat(ctx, batchTranslateSystemPrompt, string(batchInput))
	if err != nil {
		return nil, err
	}

	if parsed := parseJSONStringArray(content); len(parsed) == len(texts) {
		return parsed, nil
	}

	// Some providers ignore the JSON-array instruction; translate line by
	// line so a chatty model still yields a usable result.
	t.client.logger.Warn("batch translation reply was not a JSON array; falling back to per-line requests",
		logging.Int("texts", len(texts)))
	result := make([]string, 0, len(texts))
	for _, text := range texts {
		translated, err := t.chat(ctx, lineTranslateSystemPrompt, text)
		if err != nil {
			return nil, err
		}
		translated = strings.TrimSpace(translated)
		if translated == "" {
			translated = text
		}
		result = append(result, translated)
	}
	return result, nil
}

func (t *OpenAITranslator) chat(ctx context.Context, systemPrompt, userContent string) (string, error) {
	requestBody, err := json.Marshal(chatRequest{
		Model:       t.client.cfg.TranslationModel,
		Temperature: 0,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.client.cfg.BaseURL+"/chat/completions", bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+t.client.cfg.APIKey)
	request.Header.Set("Content-Type", "application/json")

	payload, err := t.client.do(request)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "openai", "translate", "", err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) do(request *http.Request) ([]byte, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: %s", response.Status, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}

var fencedBlockPattern = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// parseJSONStringArray extracts a string array from a model reply, trying
// the raw text, any fenced code block, and the outermost bracket span.
func parseJSONStringArray(content string) []string {
	trimmed := strings.TrimSpace(content)
	candidates := []string{trimmed}

	if match := fencedBlockPattern.FindStringSubmatch(trimmed); len(match) == 2 {
		candidates = append(candidates, strings.TrimSpace(match[1]))
	}
	first := strings.Index(trimmed, "[")
	last := strings.LastIndex(trimmed, "]")
	if first >= 0 && last > first {
		candidates = append(candidates, trimmed[first:last+1])
	}

	for _, candidate := range candidates {
		var parsed []string
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed
		}
	}
	return nil
}

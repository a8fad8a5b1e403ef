// Package transcription turns WhatsApp voice notes into text with Groq's
// hosted Whisper endpoint.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.groq.com/openai/v1"
	defaultModel    = "whisper-large-v3"
	defaultLanguage = "ar"
	// maxAudioBytes matches the provider's upload limit.
	maxAudioBytes = 25 << 20
)

var (
	// ErrNoSpeech is returned when the provider heard nothing usable.
	ErrNoSpeech = errors.New("transcription: no speech recognized")
	// ErrAudioTooLarge is returned before uploading oversized audio.
	ErrAudioTooLarge = errors.New("transcription: audio exceeds upload limit")
)

// Transcriber converts audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Config controls the Groq client.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Language   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GroqClient calls the OpenAI-compatible /audio/transcriptions endpoint.
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	language   string
	httpClient *http.Client
}

// NewGroqClient creates a client with defaults for missing settings.
func NewGroqClient(cfg Config) (*GroqClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("transcription: groq api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lang := strings.TrimSpace(cfg.Language)
	if lang == "" {
		lang = defaultLanguage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &GroqClient{apiKey: cfg.APIKey, baseURL: baseURL, model: model, language: lang, httpClient: httpClient}, nil
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Transcribe uploads audio and returns the recognized text.
func (c *GroqClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}
	if len(audio) > maxAudioBytes {
		return "", ErrAudioTooLarge
	}
	body, contentType, err := c.form(audio, mimeType)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("transcription: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription: request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("transcription: read response: %w", err)
	}
	var out transcriptionResponse
	if err := json.Unmarshal(data, &out); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("transcription: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("transcription: groq error %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("transcription: unexpected status %d", resp.StatusCode)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (c *GroqClient) form(audio []byte, mimeType string) (io.Reader, string, error) {
	if mimeType == "" {
		mimeType = "audio/ogg"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName(mimeType)))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("transcription: create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("transcription: write audio: %w", err)
	}
	fields := map[string]string{
		"model":           c.model,
		"language":        c.language,
		"response_format": "json",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("transcription: write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("transcription: close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func fileName(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	switch base {
	case "audio/mpeg":
		return "voice.mp3"
	case "audio/mp4", "audio/aac":
		return "voice.m4a"
	case "audio/amr":
		return "voice.amr"
	default:
		return "voice.ogg"
	}
}

package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SpeechClient converts text into spoken audio bytes.
type SpeechClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OpenAISpeech calls an OpenAI-compatible /audio/speech endpoint and
// returns MP3 bytes.
type OpenAISpeech struct {
	apiKey  string
	baseURL string
	voice   string
	model   string
	client  *http.Client
}

// NewOpenAISpeech creates a speech client. baseURL defaults to the OpenAI
// API when empty.
func NewOpenAISpeech(apiKey, baseURL, voice string) *OpenAISpeech {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &OpenAISpeech{
		apiKey:  apiKey,
		baseURL: baseURL,
		voice:   voice,
		model:   "tts-1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize sends one caption to the speech endpoint.
func (o *OpenAISpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(speechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech endpoint returned %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

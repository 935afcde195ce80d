package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io"
	// Rachel
	elevenLabsVoiceID = "21m00Tcm4TlvDq8ikWAM"
	elevenLabsModelID = "eleven_multilingual_v2"

	synthesisTimeout = 60 * time.Second
)

// ElevenLabsService converts tutor text to speech with a single fixed
// voice and model. Stateless request/response.
type ElevenLabsService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabsService(apiKey string) *ElevenLabsService {
	return &ElevenLabsService{
		apiKey:  apiKey,
		baseURL: elevenLabsBaseURL,
		httpClient: &http.Client{
			Timeout: synthesisTimeout,
		},
	}
}

func (s *ElevenLabsService) ready() error {
	if s == nil || s.apiKey == "" {
		return &ConfigError{Message: "Text-to-speech not configured (missing ELEVENLABS_API_KEY)"}
	}
	return nil
}

// Synthesize returns raw MPEG audio for the given text. Provider error
// detail is surfaced when present.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": elevenLabsModelID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, elevenLabsVoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Status: 502, Message: fmt.Sprintf("speech synthesis request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Status: resp.StatusCode, Message: synthesisErrorDetail(resp.Body)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Status: 502, Message: fmt.Sprintf("failed to read audio stream: %v", err)}
	}

	return audio, nil
}

// ValidateKey probes the voices endpoint to confirm the configured key.
func (s *ElevenLabsService) ValidateKey(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/voices", nil)
	if err != nil {
		return fmt.Errorf("build validation request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Status: 502, Message: fmt.Sprintf("key validation request failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Status: resp.StatusCode, Message: synthesisErrorDetail(resp.Body)}
	}
	return nil
}

// synthesisErrorDetail pulls the provider's detail field out of an
// error body, falling back to a generic message.
func synthesisErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 8*1024))
	if err != nil || len(raw) == 0 {
		return "speech synthesis failed"
	}

	var detail struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &detail) == nil && len(detail.Detail) > 0 {
		var s string
		if json.Unmarshal(detail.Detail, &s) == nil && s != "" {
			return s
		}
		return string(detail.Detail)
	}

	return "speech synthesis failed"
}

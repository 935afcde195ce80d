package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSynthesize_ReturnsAudioBytes(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00} // mpeg frame header
	var gotPath, gotKey string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer srv.Close()

	s := NewElevenLabsService("sk_test")
	s.baseURL = srv.URL

	got, err := s.Synthesize(context.Background(), "Hello learner")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if string(got) != string(audio) {
		t.Error("Audio bytes not relayed unchanged")
	}
	if !strings.HasPrefix(gotPath, "/v1/text-to-speech/") {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if gotKey != "sk_test" {
		t.Errorf("Expected api key header, got %q", gotKey)
	}
	if gotBody["text"] != "Hello learner" || gotBody["model_id"] == "" {
		t.Errorf("Unexpected request body %v", gotBody)
	}
}

func TestSynthesize_ProviderErrorDetailPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer srv.Close()

	s := NewElevenLabsService("sk_bad")
	s.baseURL = srv.URL

	_, err := s.Synthesize(context.Background(), "hi")

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if perr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401 passthrough, got %d", perr.Status)
	}
	if !strings.Contains(perr.Message, "invalid api key") {
		t.Errorf("Expected provider detail in message, got %q", perr.Message)
	}
}

func TestSynthesize_MissingKeyIsConfigError(t *testing.T) {
	s := NewElevenLabsService("")

	_, err := s.Synthesize(context.Background(), "hi")

	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}

func TestSynthesisErrorDetail_FallsBackToGeneric(t *testing.T) {
	got := synthesisErrorDetail(strings.NewReader("<html>gateway timeout</html>"))
	if got != "speech synthesis failed" {
		t.Errorf("Expected generic message, got %q", got)
	}
}

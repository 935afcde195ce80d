package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"lumi-backend/internal/models"
)

type speechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechHandler forwards tutor text to the TTS provider and relays the
// audio bytes.
type SpeechHandler struct {
	tts speechSynthesizer
}

func NewSpeechHandler(tts speechSynthesizer) *SpeechHandler {
	return &SpeechHandler{tts: tts}
}

func (h *SpeechHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Text is required", r))
		return
	}

	audio, err := h.tts.Synthesize(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"lumi-backend/internal/models"
)

type tutorChatter interface {
	Chat(ctx context.Context, lessonContext string, history []models.ChatMessage, message string) (string, error)
}

// ChatHandler relays one tutoring turn. The caller sends the lesson
// context and the full history every time; nothing is stored between
// calls.
type ChatHandler struct {
	gemini tutorChatter
}

func NewChatHandler(gemini tutorChatter) *ChatHandler {
	return &ChatHandler{gemini: gemini}
}

func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}
	if strings.TrimSpace(req.Context) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Lesson context is required", r))
		return
	}

	reply, err := h.gemini.Chat(r.Context(), req.Context, req.History, req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Text: reply})
}

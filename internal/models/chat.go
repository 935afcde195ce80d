package models

// ChatMessage represents a single turn in the tutoring conversation.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// ChatRequest is the payload sent to the chat endpoint. History carries
// the full conversation so far; no session state lives server-side.
type ChatRequest struct {
	Context string        `json:"context"`
	History []ChatMessage `json:"history"`
	Message string        `json:"message"`
}

// ChatResponse is the tutor's reply.
type ChatResponse struct {
	Text string `json:"text"`
}

package models

// GenerateLessonRequest is the JSON body of the lesson endpoint.
// Document uploads arrive as multipart instead, with the same field
// names as form values.
type GenerateLessonRequest struct {
	InputType string `json:"input_type"`
	Data      string `json:"data"`
}

// LessonResponse pairs the generated kit with the normalized source
// text the client needs for tutoring context.
type LessonResponse struct {
	LessonKit  *LessonKit `json:"lesson_kit"`
	SourceText string     `json:"source_text"`
}

// SpeechRequest is the payload of the text-to-speech endpoint.
type SpeechRequest struct {
	Text string `json:"text"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

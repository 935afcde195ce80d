package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"lumi-backend/internal/models"
	"lumi-backend/internal/services"
)

type sourceNormalizer interface {
	Normalize(ctx context.Context, kind services.SourceKind, data string, document []byte) (string, error)
}

type lessonGenerator interface {
	GenerateLesson(ctx context.Context, kind services.SourceKind, input string) (*models.LessonKit, error)
}

// LessonHandler turns one of the five input kinds into a generated
// lesson kit.
type LessonHandler struct {
	source         sourceNormalizer
	gemini         lessonGenerator
	maxUploadBytes int64
}

func NewLessonHandler(source sourceNormalizer, gemini lessonGenerator, maxUploadBytes int64) *LessonHandler {
	return &LessonHandler{
		source:         source,
		gemini:         gemini,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *LessonHandler) Generate(w http.ResponseWriter, r *http.Request) {
	inputType, data, document, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	kind, err := services.ParseSourceKind(inputType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if kind == services.SourceDocument && len(document) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Document uploads require a file", r))
		return
	}

	sourceText, err := h.source.Normalize(r.Context(), kind, data, document)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	// Search mode prompts with the raw topic; everything else prompts
	// with the normalized source text.
	input := sourceText
	if kind == services.SourceSearch {
		if strings.TrimSpace(data) == "" {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Search topic is required", r))
			return
		}
		input = data
	}

	kit, err := h.gemini.GenerateLesson(r.Context(), kind, input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.LessonResponse{
		LessonKit:  kit,
		SourceText: sourceText,
	})
}

// readRequest accepts either a JSON body or a multipart form carrying a
// document upload. On failure it writes the error response itself.
func (h *LessonHandler) readRequest(w http.ResponseWriter, r *http.Request) (inputType, data string, document []byte, ok bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if r.ContentLength > h.maxUploadBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "Uploaded file exceeds the size limit", r))
			return "", "", nil, false
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

		file, _, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			document, err = io.ReadAll(file)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Could not read uploaded file", r))
				return "", "", nil, false
			}
		}

		return r.FormValue("input_type"), r.FormValue("data"), document, true
	}

	var req models.GenerateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return "", "", nil, false
	}
	return req.InputType, req.Data, nil, true
}

package handlers

import (
	"io"
	"net/http"

	"lumi-backend/internal/services"
)

type documentExtractor interface {
	Extract(data []byte) services.ExtractResult
}

// ExtractHandler exposes the extraction chain directly for diagnosing
// problem documents: it reports which strategy succeeded and a text
// preview, or every strategy's failure note.
type ExtractHandler struct {
	docs           documentExtractor
	maxUploadBytes int64
}

func NewExtractHandler(docs documentExtractor, maxUploadBytes int64) *ExtractHandler {
	return &ExtractHandler{docs: docs, maxUploadBytes: maxUploadBytes}
}

const extractSampleLen = 1000

func (h *ExtractHandler) Debug(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Could not read uploaded file"})
		return
	}

	res := h.docs.Extract(data)
	if !res.OK() {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "All extraction strategies failed",
			"attempts": res.Attempts,
		})
		return
	}

	sample := res.Text
	if len(sample) > extractSampleLen {
		sample = sample[:extractSampleLen]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method": res.Strategy,
		"length": len(res.Text),
		"sample": sample,
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"lumi-backend/internal/models"
	"lumi-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleServiceError maps the service error taxonomy onto HTTP. Provider
// failures keep their upstream status so rate-limit (429) and quota
// (402) semantics survive the passthrough.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cfgErr   *services.ConfigError
		valErr   *services.ValidationError
		extErr   *services.ExtractionError
		fetchErr *services.FetchError
		genErr   *services.GenerationFormatError
		provErr  *services.ProviderError
	)

	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("CONFIG_ERROR", cfgErr.Message, r))
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", valErr.Message, r))
	case errors.As(err, &extErr):
		writeJSON(w, http.StatusBadRequest, errorResp("EXTRACTION_FAILED", extErr.Message, r))
	case errors.As(err, &fetchErr):
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_FETCH_ERROR", fetchErr.Message, r))
	case errors.As(err, &genErr):
		writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_FORMAT_ERROR", genErr.Message, r))
	case errors.As(err, &provErr):
		writeJSON(w, providerStatus(provErr.Status), errorResp("PROVIDER_ERROR", provErr.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

func providerStatus(status int) int {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusPaymentRequired,
		http.StatusUnauthorized,
		http.StatusForbidden:
		return status
	default:
		return http.StatusBadGateway
	}
}

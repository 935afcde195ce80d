package services

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ConfigError means a provider credential is missing. It is checked per
// request so the process can start without keys.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// ValidationError covers bad caller input: unsupported kinds, missing
// fields, undersized or oversized payloads.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ExtractionError means every extraction strategy was exhausted, or a
// web page had no extractable prose. Attempts records what was tried.
type ExtractionError struct {
	Message  string
	Attempts []ExtractAttempt
}

func (e *ExtractionError) Error() string { return e.Message }

// FetchError wraps a network failure or non-2xx status while fetching a
// URL or transcript.
type FetchError struct {
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// GenerationFormatError means the provider returned empty or
// non-parseable content.
type GenerationFormatError struct {
	Message string
}

func (e *GenerationFormatError) Error() string { return e.Message }

// ProviderError passes through an upstream AI provider failure with its
// status semantics (429 rate limit, 402 quota, 401/403 auth).
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
}

// providerError classifies an error from the Gemini SDK, preserving the
// HTTP status when the transport exposes one.
func providerError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &ProviderError{Status: gerr.Code, Message: gerr.Message}
	}
	return &ProviderError{Status: 502, Message: err.Error()}
}

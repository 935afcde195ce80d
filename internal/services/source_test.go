package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestSourceService() *SourceService {
	return NewSourceService(NewDocExtractService(), NewWebPageService(), NewYouTubeService())
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		in       string
		expected SourceKind
	}{
		{"paste", SourcePaste},
		{"text", SourcePaste},
		{"pdf", SourceDocument},
		{"document", SourceDocument},
		{"url", SourceURL},
		{"youtube", SourceYouTube},
		{"search", SourceSearch},
		{"query", SourceSearch},
		{"YouTube", SourceYouTube},
	}

	for _, tc := range tests {
		kind, err := ParseSourceKind(tc.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if kind != tc.expected {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.expected, kind)
		}
	}
}

func TestParseSourceKind_Invalid(t *testing.T) {
	_, err := ParseSourceKind("carrier-pigeon")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestNormalize_PastePassesThroughUnchanged(t *testing.T) {
	s := newTestSourceService()
	payload := "Photosynthesis converts light into chemical energy."

	got, err := s.Normalize(context.Background(), SourcePaste, payload, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != payload {
		t.Errorf("Expected payload unchanged, got %q", got)
	}
}

func TestNormalize_EmptyPasteIsValidationError(t *testing.T) {
	s := newTestSourceService()

	_, err := s.Normalize(context.Background(), SourcePaste, "   ", nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestNormalize_SearchProducesNoSourceText(t *testing.T) {
	s := newTestSourceService()

	got, err := s.Normalize(context.Background(), SourceSearch, "black holes", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty source text for search, got %q", got)
	}
}

func TestNormalize_TinyDocumentIsExtractionErrorWithAttempts(t *testing.T) {
	s := newTestSourceService()

	_, err := s.Normalize(context.Background(), SourceDocument, "", []byte("tiny"))

	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
	if len(xerr.Attempts) != 1 || xerr.Attempts[0].Strategy != "size-check" {
		t.Errorf("Expected size-check attempt, got %+v", xerr.Attempts)
	}
}

func TestNormalize_URLNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newTestSourceService()
	_, err := s.Normalize(context.Background(), SourceURL, srv.URL+"/404", nil)

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
}

func TestNormalize_URLWithoutProseIsExtractionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>nav only</div></body></html>`))
	}))
	defer srv.Close()

	s := newTestSourceService()
	_, err := s.Normalize(context.Background(), SourceURL, srv.URL, nil)

	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
}

func TestNormalize_BadYouTubeLinkIsValidationError(t *testing.T) {
	s := newTestSourceService()

	_, err := s.Normalize(context.Background(), SourceYouTube, "https://example.com/not-a-video", nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractProse_ParagraphsInDocumentOrder(t *testing.T) {
	html := `<html><body>
		<h1>Title</h1>
		<p>First paragraph.</p>
		<div><p>Second
		paragraph.</p></div>
		<p>Third.</p>
	</body></html>`

	s := NewWebPageService()
	got, err := s.ExtractProse(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := "First paragraph. Second paragraph. Third."
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestExtractProse_StripsScriptAndStyle(t *testing.T) {
	html := `<html><head><style>p { color: red; }</style></head><body>
		<script>var hidden = "not prose";</script>
		<p>Visible prose.</p>
	</body></html>`

	s := NewWebPageService()
	got, err := s.ExtractProse(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got != "Visible prose." {
		t.Errorf("Expected script/style content removed, got %q", got)
	}
}

func TestExtractProse_NoParagraphsYieldsEmptyString(t *testing.T) {
	s := NewWebPageService()
	got, err := s.ExtractProse(`<html><body><div>no paragraphs here</div></body></html>`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestExtractProse_Idempotent(t *testing.T) {
	html := `<p>alpha</p><p>beta</p><script>x</script>`
	s := NewWebPageService()

	first, err := s.ExtractProse(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := s.ExtractProse(html)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("Expected identical output, got %q then %q", first, second)
	}
}

func TestFetchProse_Non2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := NewWebPageService()
	_, err := s.FetchProse(context.Background(), srv.URL+"/404")

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
}

func TestFetchProse_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Remote prose.</p></body></html>`))
	}))
	defer srv.Close()

	s := NewWebPageService()
	got, err := s.FetchProse(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "Remote prose." {
		t.Errorf("Expected prose, got %q", got)
	}
}

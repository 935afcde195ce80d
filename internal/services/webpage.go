package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxPageBytes caps how much of a fetched page is read.
const maxPageBytes = 10 * 1024 * 1024

// WebPageService fetches a URL and strips its markup down to prose. No
// JavaScript execution, no stylesheet application.
type WebPageService struct {
	httpClient *http.Client
}

func NewWebPageService() *WebPageService {
	return &WebPageService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchProse downloads the page and returns its paragraph text. A page
// with no paragraph elements yields an empty string, not an error; the
// caller treats that as an extraction failure.
func (s *WebPageService) FetchProse(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{Message: fmt.Sprintf("failed to fetch %s: %v", pageURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{Message: fmt.Sprintf("fetching %s returned status %d", pageURL, resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &FetchError{Message: fmt.Sprintf("failed to read %s: %v", pageURL, err)}
	}

	return s.ExtractProse(string(body))
}

// ExtractProse parses static HTML and concatenates the text of
// paragraph elements in document order, joined by single spaces.
// Script and style blocks are dropped first.
func (s *WebPageService) ExtractProse(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, " "), nil
}

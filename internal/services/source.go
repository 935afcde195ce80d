package services

import (
	"context"
	"fmt"
	"strings"
)

// SourceKind identifies how a lesson request's payload should be turned
// into source text.
type SourceKind string

const (
	SourcePaste    SourceKind = "paste"
	SourceDocument SourceKind = "document"
	SourceURL      SourceKind = "url"
	SourceYouTube  SourceKind = "youtube"
	SourceSearch   SourceKind = "search"
)

// ParseSourceKind normalizes the wire value, accepting the aliases the
// original clients send.
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paste", "text":
		return SourcePaste, nil
	case "document", "pdf":
		return SourceDocument, nil
	case "url":
		return SourceURL, nil
	case "youtube":
		return SourceYouTube, nil
	case "search", "query":
		return SourceSearch, nil
	default:
		return "", &ValidationError{Message: fmt.Sprintf("invalid input type %q", s)}
	}
}

// SourceService normalizes the five input kinds into plain source text
// for the generation client.
type SourceService struct {
	docs    *DocExtractService
	web     *WebPageService
	youtube *YouTubeService
}

func NewSourceService(docs *DocExtractService, web *WebPageService, youtube *YouTubeService) *SourceService {
	return &SourceService{
		docs:    docs,
		web:     web,
		youtube: youtube,
	}
}

// Normalize resolves (kind, payload) to source text. Pasted text passes
// through unchanged; documents and URLs go through their extractors;
// YouTube links resolve to transcripts; search produces no source text
// at all (the raw topic goes straight to the generation client).
func (s *SourceService) Normalize(ctx context.Context, kind SourceKind, data string, document []byte) (string, error) {
	switch kind {
	case SourcePaste:
		if strings.TrimSpace(data) == "" {
			return "", &ValidationError{Message: "pasted text is required"}
		}
		return data, nil

	case SourceDocument:
		res := s.docs.Extract(document)
		if !res.OK() {
			return "", &ExtractionError{
				Message:  "could not extract text from the document",
				Attempts: res.Attempts,
			}
		}
		return res.Text, nil

	case SourceURL:
		if strings.TrimSpace(data) == "" {
			return "", &ValidationError{Message: "url is required"}
		}
		text, err := s.web.FetchProse(ctx, data)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", &ExtractionError{Message: "page has no extractable prose"}
		}
		return text, nil

	case SourceYouTube:
		if strings.TrimSpace(data) == "" {
			return "", &ValidationError{Message: "youtube link is required"}
		}
		videoID, err := s.youtube.ResolveVideoID(data)
		if err != nil {
			return "", &ValidationError{Message: err.Error()}
		}
		transcript, err := s.youtube.GetTranscript(videoID)
		if err != nil {
			return "", &FetchError{Message: fmt.Sprintf("could not fetch transcript: %v", err)}
		}
		return transcript, nil

	case SourceSearch:
		// The topic string is prompt input, not source text.
		return "", nil

	default:
		return "", &ValidationError{Message: fmt.Sprintf("invalid input type %q", kind)}
	}
}

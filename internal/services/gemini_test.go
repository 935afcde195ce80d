package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"lumi-backend/internal/models"
)

const sampleKitJSON = `{
	"title": "Photosynthesis",
	"summary": "How plants convert light into chemical energy.",
	"chapters": [
		{"title": "Light reactions", "timestamp": "00:30"},
		{"title": "Calvin cycle", "timestamp": "N/A"}
	],
	"jargon": [{"term": "chloroplast", "definition": "organelle where photosynthesis happens"}],
	"quiz": [{"question": "What do plants absorb?", "options": ["Light", "Sound"], "answer": "Light"}]
}`

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fence with surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFence(tc.in); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestParseLessonKit_FencedEqualsUnfenced(t *testing.T) {
	plain, err := parseLessonKit(sampleKitJSON)
	if err != nil {
		t.Fatalf("Unexpected error for plain JSON: %v", err)
	}

	fenced, err := parseLessonKit("```json\n" + sampleKitJSON + "\n```")
	if err != nil {
		t.Fatalf("Unexpected error for fenced JSON: %v", err)
	}

	if plain.Title != fenced.Title || plain.Summary != fenced.Summary {
		t.Error("Fenced and unfenced kits differ")
	}
	if len(plain.Chapters) != len(fenced.Chapters) || len(plain.Quiz) != len(fenced.Quiz) {
		t.Error("Fenced and unfenced kits differ in array lengths")
	}
}

func TestParseLessonKit_PreservesOrder(t *testing.T) {
	kit, err := parseLessonKit(sampleKitJSON)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if kit.Chapters[0].Title != "Light reactions" || kit.Chapters[1].Title != "Calvin cycle" {
		t.Errorf("Chapter order not preserved: %+v", kit.Chapters)
	}
	if kit.Quiz[0].Options[0] != "Light" || kit.Quiz[0].Options[1] != "Sound" {
		t.Errorf("Quiz option order not preserved: %+v", kit.Quiz[0].Options)
	}
}

func TestParseLessonKit_InvalidJSON(t *testing.T) {
	_, err := parseLessonKit("not json at all")

	var gerr *GenerationFormatError
	if !errors.As(err, &gerr) {
		t.Fatalf("Expected GenerationFormatError, got %v", err)
	}
}

func TestParseLessonKit_MissingRequiredField(t *testing.T) {
	_, err := parseLessonKit(`{"summary":"s","jargon":[],"quiz":[]}`)

	var gerr *GenerationFormatError
	if !errors.As(err, &gerr) {
		t.Fatalf("Expected GenerationFormatError for missing title, got %v", err)
	}
}

func TestParseLessonKit_DropsQuizItemsWithBadAnswer(t *testing.T) {
	kit, err := parseLessonKit(`{
		"title": "T", "summary": "S", "jargon": [],
		"quiz": [
			{"question": "ok", "options": ["A", "B"], "answer": "A"},
			{"question": "bad answer", "options": ["A", "B"], "answer": "C"},
			{"question": "too few options", "options": ["A"], "answer": "A"}
		]
	}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(kit.Quiz) != 1 || kit.Quiz[0].Question != "ok" {
		t.Errorf("Expected only the valid quiz item, got %+v", kit.Quiz)
	}
}

func TestLessonKitSanitize_NormalizesBadTimestamps(t *testing.T) {
	kit := models.LessonKit{
		Title:   "T",
		Summary: "S",
		Chapters: []models.Chapter{
			{Title: "a", Timestamp: "01:02:03"},
			{Title: "b", Timestamp: "12:34"},
			{Title: "c", Timestamp: "around the middle"},
		},
		Jargon: []models.JargonEntry{},
		Quiz:   []models.QuizItem{},
	}
	kit.Sanitize()

	if kit.Chapters[0].Timestamp != "01:02:03" || kit.Chapters[1].Timestamp != "12:34" {
		t.Errorf("Valid timestamps were altered: %+v", kit.Chapters)
	}
	if kit.Chapters[2].Timestamp != "N/A" {
		t.Errorf("Expected free-text timestamp normalized to N/A, got %q", kit.Chapters[2].Timestamp)
	}
}

func TestLessonPrompt(t *testing.T) {
	if got := lessonPrompt(SourceSearch, "black holes"); got != "Generate a lesson kit about: black holes" {
		t.Errorf("Unexpected search prompt %q", got)
	}

	content := lessonPrompt(SourcePaste, "Photosynthesis converts light into chemical energy.")
	if !strings.HasPrefix(content, "Here is the content to analyze:") {
		t.Errorf("Expected content-mode directive, got %q", content)
	}
	if !strings.Contains(content, "Photosynthesis converts light into chemical energy.") {
		t.Error("Source text missing from content prompt")
	}

	long := strings.Repeat("a", maxSourceChars+500)
	truncated := lessonPrompt(SourceURL, long)
	if strings.Count(truncated, "a") != maxSourceChars {
		t.Errorf("Expected source capped at %d chars", maxSourceChars)
	}
}

func TestChatHistoryContents_CountAndOrder(t *testing.T) {
	// First turn: no history, only the new utterance travels beyond the
	// system instruction.
	if got := chatHistoryContents(nil); len(got) != 0 {
		t.Fatalf("Expected empty contents for empty history, got %d", len(got))
	}

	history := []models.ChatMessage{
		{Role: "user", Text: "Hi Lumi"},
		{Role: "model", Text: "Hello! Ready to review?"},
		{Role: "user", Text: "Yes"},
	}
	contents := chatHistoryContents(history)

	if len(contents) != 3 {
		t.Fatalf("Expected 3 contents, got %d", len(contents))
	}
	expectedRoles := []string{"user", "model", "user"}
	for i, c := range contents {
		if c.Role != expectedRoles[i] {
			t.Errorf("Content %d: expected role %q, got %q", i, expectedRoles[i], c.Role)
		}
		text, ok := c.Parts[0].(genai.Text)
		if !ok || string(text) != history[i].Text {
			t.Errorf("Content %d: text not preserved", i)
		}
	}
}

func TestChatHistoryContents_UnknownRoleBecomesModel(t *testing.T) {
	contents := chatHistoryContents([]models.ChatMessage{{Role: "assistant", Text: "hi"}})
	if contents[0].Role != "model" {
		t.Errorf("Expected non-user role mapped to model, got %q", contents[0].Role)
	}
}

func TestNilGeminiServiceReturnsConfigError(t *testing.T) {
	var s *GeminiService

	_, err := s.GenerateLesson(context.Background(), SourcePaste, "text")
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigError from nil service, got %v", err)
	}

	_, err = s.Chat(context.Background(), "context", nil, "hi")
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected ConfigError from nil service chat, got %v", err)
	}
}

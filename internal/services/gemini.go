package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"lumi-backend/internal/models"
)

// maxSourceChars caps how much source text is fed into a generation
// prompt.
const maxSourceChars = 5000

// lessonKitSchema constrains the provider to the Lesson Kit shape.
var lessonKitSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString},
		"summary": {Type: genai.TypeString},
		"chapters": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {Type: genai.TypeString},
					"timestamp": {
						Type:        genai.TypeString,
						Description: "Timestamp in format HH:MM:SS or MM:SS, or 'N/A' if not a video.",
					},
				},
			},
		},
		"jargon": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"term":       {Type: genai.TypeString},
					"definition": {Type: genai.TypeString},
				},
			},
		},
		"quiz": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"options":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"answer":   {Type: genai.TypeString},
				},
			},
		},
	},
	Required: []string{"title", "summary", "jargon", "quiz"},
}

const lessonInstruction = `You are "Lumi," an expert educator. Your job is to create a complete "Lesson Kit" from the provided content. Analyze the content and return a JSON object that strictly follows the provided schema. The lesson should be clear, engaging, and accurate.

- For 'search' requests, find the best information on the web to build the lesson.
- For 'youtube' transcripts, the 'chapters' should be based on logical topic shifts.
- For 'url' or 'paste', 'chapters' can be based on sections or key ideas.`

// GeminiService wraps the generative model for lesson generation and
// tutoring chat. A nil service (key never configured) fails each call
// with a ConfigError instead of crashing.
type GeminiService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // Token bucket
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, concurrentReqs int) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Token bucket for limiting concurrent provider calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	if s == nil || s.client == nil {
		return
	}
	s.client.Close()
}

func (s *GeminiService) ready() error {
	if s == nil || s.client == nil {
		return &ConfigError{Message: "Generative AI not configured (missing GEMINI_API_KEY)"}
	}
	return nil
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateLesson builds the provider request for the given source kind
// and parses the strict-JSON Lesson Kit reply. Search-kind requests get
// web-retrieval augmentation instead of local source text.
func (s *GeminiService) GenerateLesson(ctx context.Context, kind SourceKind, input string) (*models.LessonKit, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = lessonKitSchema
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(lessonInstruction)}}
	if kind == SourceSearch {
		model.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(lessonPrompt(kind, input)))
	if err != nil {
		return nil, providerError(err)
	}

	rawText := strings.TrimSpace(extractText(resp))
	if rawText == "" {
		return nil, &GenerationFormatError{Message: "empty response from generative model"}
	}

	return parseLessonKit(rawText)
}

// lessonPrompt shapes the user turn per source kind. Content-mode
// prompts carry the extracted text verbatim, capped to keep the request
// within sane token bounds.
func lessonPrompt(kind SourceKind, input string) string {
	if kind == SourceSearch {
		return "Generate a lesson kit about: " + input
	}
	return "Here is the content to analyze:\n\n" + truncateRunes(input, maxSourceChars)
}

// parseLessonKit strips any markdown fencing, unmarshals, validates the
// required fields, and sanitizes the quiz.
func parseLessonKit(raw string) (*models.LessonKit, error) {
	raw = stripCodeFence(raw)

	var kit models.LessonKit
	if err := json.Unmarshal([]byte(raw), &kit); err != nil {
		return nil, &GenerationFormatError{Message: "generative model returned invalid JSON"}
	}
	if err := kit.Validate(); err != nil {
		return nil, &GenerationFormatError{Message: err.Error()}
	}
	kit.Sanitize()

	return &kit, nil
}

const tutorPromptTemplate = `You are "Lumi," a friendly, patient, and encouraging study buddy. Your goal is to help the user practice the concepts from the lesson they just learned.

Here is the full context of their lesson:
---
%s
---

Rules:
- Use the provided chat history to understand the conversation.
- Keep your responses short, conversational, and encouraging.
- Do NOT just lecture. Ask open-ended questions to test their knowledge.
- If they are wrong, gently correct them and guide them to the right answer.
- Behave like a real, friendly human tutor.`

// Chat replays the full conversation: the lesson context rides in the
// system instruction on every turn, the prior history is handed to the
// chat session unchanged, and the new utterance is the only new input.
// Nothing is kept server-side between calls.
func (s *GeminiService) Chat(ctx context.Context, lessonContext string, history []models.ChatMessage, message string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(tutorPromptTemplate, lessonContext))},
	}

	cs := model.StartChat()
	cs.History = chatHistoryContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", providerError(err)
	}

	reply := strings.TrimSpace(extractText(resp))
	if reply == "" {
		return "", &GenerationFormatError{Message: "empty chat response from generative model"}
	}

	return reply, nil
}

// chatHistoryContents maps prior turns to provider contents, preserving
// chronological order. Any role other than "user" counts as the model.
func chatHistoryContents(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "model"
		if msg.Role == "user" {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}
	return contents
}

// Ping issues a minimal generation call to verify the configured key.
func (s *GeminiService) Ping(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	model := s.client.GenerativeModel(s.modelName)
	if _, err := model.GenerateContent(ctx, genai.Text("Test connection.")); err != nil {
		return providerError(err)
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

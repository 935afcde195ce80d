package models

import (
	"fmt"
	"regexp"
)

// Chapter is one section of a lesson. Timestamp is "HH:MM:SS" or "MM:SS"
// for video sources and "N/A" for everything else.
type Chapter struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// JargonEntry defines one term from the lesson glossary.
type JargonEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// QuizItem is one multiple-choice question. Answer must equal one of
// Options.
type QuizItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// LessonKit is the structured study package produced from a source.
// Chapters may be empty for non-sequential sources; the other fields are
// schema-required.
type LessonKit struct {
	Title    string        `json:"title"`
	Summary  string        `json:"summary"`
	Chapters []Chapter     `json:"chapters"`
	Jargon   []JargonEntry `json:"jargon"`
	Quiz     []QuizItem    `json:"quiz"`
}

var timestampPattern = regexp.MustCompile(`^(?:\d{1,2}:)?\d{1,2}:\d{2}$`)

// Validate checks the schema-required fields.
func (k *LessonKit) Validate() error {
	if k.Title == "" {
		return fmt.Errorf("lesson kit is missing a title")
	}
	if k.Summary == "" {
		return fmt.Errorf("lesson kit is missing a summary")
	}
	if k.Jargon == nil {
		return fmt.Errorf("lesson kit is missing the jargon glossary")
	}
	if k.Quiz == nil {
		return fmt.Errorf("lesson kit is missing the quiz")
	}
	return nil
}

// Sanitize drops malformed quiz items and normalizes chapter timestamps.
// The provider is asked for schema-conforming output, but free-text
// fields still drift occasionally.
func (k *LessonKit) Sanitize() {
	var quiz []QuizItem
	for _, q := range k.Quiz {
		if q.Question == "" || len(q.Options) < 2 || len(q.Options) > 4 {
			continue
		}
		if !containsOption(q.Options, q.Answer) {
			continue
		}
		quiz = append(quiz, q)
	}
	k.Quiz = quiz

	for i, c := range k.Chapters {
		if c.Timestamp != "N/A" && !timestampPattern.MatchString(c.Timestamp) {
			k.Chapters[i].Timestamp = "N/A"
		}
	}
}

func containsOption(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

// Package taggingtest provides an in-memory tagging.Engine for tests.
package taggingtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"quill/internal/models"
	"quill/internal/tagging"
)

// Entry is the tag and lemma a StaticEngine emits for a word.
type Entry struct {
	Tag   string
	Lemma string
}

// Call records one Tag invocation.
type Call struct {
	Text string
	Lang models.Language
}

// StaticEngine is a test double for tagging.Engine. Words are looked up in
// the per-language lexicon; unknown words are emitted with tag "UNK" and
// their lowercased form as lemma. Raw overrides the output for an exact input.
type StaticEngine struct {
	Lexicon map[models.Language]map[string]Entry
	Raw     map[string][]string
	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls []Call
}

// NewStaticEngine creates an engine that knows a single language.
func NewStaticEngine(lang models.Language, words map[string]Entry) *StaticEngine {
	return &StaticEngine{Lexicon: map[models.Language]map[string]Entry{lang: words}}
}

// Tag implements tagging.Engine.
func (s *StaticEngine) Tag(_ context.Context, text string, lang models.Language) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Text: text, Lang: lang})
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if out, ok := s.Raw[text]; ok {
		return out, nil
	}
	lex, ok := s.Lexicon[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", tagging.ErrUnsupportedLanguage, lang)
	}

	var records []string
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}) {
		entry, ok := lex[strings.ToLower(word)]
		if !ok {
			entry = Entry{Tag: "UNK", Lemma: strings.ToLower(word)}
		}
		records = append(records, word+"\t"+entry.Tag+"\t"+entry.Lemma)
	}
	return records, nil
}

// Calls returns a copy of the recorded invocations.
func (s *StaticEngine) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

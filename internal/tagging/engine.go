package tagging

import (
	"context"
	"errors"

	"quill/internal/models"
)

// ErrUnsupportedLanguage is returned when no tagger is configured for a language.
var ErrUnsupportedLanguage = errors.New("tagging: unsupported language")

// Engine runs a part-of-speech tagger over text.
// Implementations must be safe for concurrent use.
type Engine interface {
	// Tag returns the raw output records of the tagger, one per token.
	// Empty output is not an error.
	Tag(ctx context.Context, text string, lang models.Language) ([]string, error)
}

// Triple is one parsed tagger record.
type Triple struct {
	Original   string `json:"original"`
	TagType    string `json:"tag_type"`
	Normalized string `json:"tag_string"`
}

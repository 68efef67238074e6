package tagging

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
)

// Extractor turns text into tag triples using an Engine.
type Extractor struct {
	engine Engine
}

// NewExtractor creates an Extractor backed by engine.
func NewExtractor(engine Engine) *Extractor {
	return &Extractor{engine: engine}
}

// ExtractTags runs the engine and returns the well-formed triples in output order.
func (e *Extractor) ExtractTags(ctx context.Context, text string, lang models.Language) ([]Triple, error) {
	records, err := e.engine.Tag(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	triples := ParseOutput(records)
	if dropped := countNonEmpty(records) - len(triples); dropped > 0 {
		observability.TaggerRecordsDropped.Add(float64(dropped))
	}
	return triples, nil
}

// ExtractTagSet returns the distinct normalized forms in first-seen order.
func (e *Extractor) ExtractTagSet(ctx context.Context, text string, lang models.Language) ([]string, error) {
	triples, err := e.ExtractTags(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	return NormalizedSet(triples), nil
}

// NormalizedSet returns the distinct Normalized values of triples in order.
func NormalizedSet(triples []Triple) []string {
	seen := make(map[string]struct{}, len(triples))
	out := make([]string, 0, len(triples))
	for _, t := range triples {
		if _, ok := seen[t.Normalized]; ok {
			continue
		}
		seen[t.Normalized] = struct{}{}
		out = append(out, t.Normalized)
	}
	return out
}

func countNonEmpty(records []string) int {
	n := 0
	for _, r := range records {
		if r != "" {
			n++
		}
	}
	return n
}

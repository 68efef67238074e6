package tagging

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"quill/internal/models"
	"quill/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// TreeTagger runs an external tagger command per language. The command
// receives the text on stdin and writes one record per line on stdout.
type TreeTagger struct {
	commands map[models.Language][]string
}

// NewTreeTagger builds a TreeTagger from language → command line pairs.
// Command lines are split on whitespace; blank entries are ignored.
func NewTreeTagger(commands map[models.Language]string) *TreeTagger {
	t := &TreeTagger{commands: make(map[models.Language][]string, len(commands))}
	for lang, cmd := range commands {
		if argv := strings.Fields(cmd); len(argv) > 0 {
			t.commands[lang] = argv
		}
	}
	return t
}

// Languages lists the languages with a configured command.
func (t *TreeTagger) Languages() []models.Language {
	out := make([]models.Language, 0, len(t.commands))
	for _, lang := range models.Languages {
		if _, ok := t.commands[lang]; ok {
			out = append(out, lang)
		}
	}
	return out
}

// Tag implements Engine.
func (t *TreeTagger) Tag(ctx context.Context, text string, lang models.Language) (records []string, err error) {
	argv, ok := t.commands[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	ctx, span := observability.StartSpan(ctx, "tagger.run",
		attribute.String("tagger.language", lang.String()),
		attribute.String("tagger.command", argv[0]),
		attribute.Int("tagger.input_bytes", len(text)),
	)
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.TaggerRuns.WithLabelValues(lang.String(), outcome).Inc()
		observability.TaggerLatency.WithLabelValues(lang.String()).Observe(time.Since(start).Seconds())
		observability.EndSpan(span, err)
	}()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("tagger %s: %w: %s", argv[0], err, msg)
		}
		return nil, fmt.Errorf("tagger %s: %w", argv[0], err)
	}

	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		records = append(records, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tagger output: %w", err)
	}
	return records, nil
}

package tagging

import (
	"context"
	"os/exec"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestTreeTagger_ReadsStdoutLines(t *testing.T) {
	requireCommand(t, "cat")
	tt := NewTreeTagger(map[models.Language]string{models.LanguageEnglish: "cat"})

	records, err := tt.Tag(context.Background(), "cats\tNNS\tcat\nsat\tVVD\tsit\n", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, []string{"cats\tNNS\tcat", "sat\tVVD\tsit"}, records)
}

func TestTreeTagger_CommandFailure(t *testing.T) {
	requireCommand(t, "false")
	tt := NewTreeTagger(map[models.Language]string{models.LanguageEnglish: "false"})

	_, err := tt.Tag(context.Background(), "text", models.LanguageEnglish)
	assert.Error(t, err)
}

func TestTreeTagger_UnsupportedLanguage(t *testing.T) {
	tt := NewTreeTagger(map[models.Language]string{models.LanguageEnglish: "tree-tagger-english", models.LanguageRomanian: "  "})

	_, err := tt.Tag(context.Background(), "salut", models.LanguageRomanian)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Equal(t, []models.Language{models.LanguageEnglish}, tt.Languages())
}

func TestTreeTagger_CanceledContext(t *testing.T) {
	requireCommand(t, "cat")
	tt := NewTreeTagger(map[models.Language]string{models.LanguageEnglish: "cat"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tt.Tag(ctx, "text", models.LanguageEnglish)
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/cache"
	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/tagging"
	"quill/internal/tagging/taggingtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var lexicon = map[string]taggingtest.Entry{
	"cats": {Tag: "NNS", Lemma: "cat"},
	"sat":  {Tag: "VVD", Lemma: "sit"},
}

func TestRunTag_PrintsOneTriplePerLine(t *testing.T) {
	engine := taggingtest.NewStaticEngine(models.LanguageEnglish, lexicon)
	var out bytes.Buffer

	require.NoError(t, runTag(context.Background(), engine, "<p>Cats <i>sat</i></p>", models.LanguageEnglish, true, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var first tagging.Triple
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, tagging.Triple{Original: "Cats", TagType: "NNS", Normalized: "cat"}, first)
	assert.Equal(t, "Cats sat", engine.Calls()[0].Text)
}

func TestRunTag_UnsupportedLanguage(t *testing.T) {
	engine := taggingtest.NewStaticEngine(models.LanguageEnglish, lexicon)
	err := runTag(context.Background(), engine, "pisici", models.LanguageRomanian, false, &bytes.Buffer{})
	assert.ErrorIs(t, err, tagging.ErrUnsupportedLanguage)
}

func TestRunSearch(t *testing.T) {
	cache.SetClient(nil)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	post := &models.Post{Title: "Cats", Content: "<p>cats</p>", Language: models.LanguageEnglish, UserID: user.ID}
	require.NoError(t, db.Create(post).Error)

	extractor := tagging.NewExtractor(taggingtest.NewStaticEngine(models.LanguageEnglish, lexicon))
	posts := repository.NewPostRepository(db)
	tags := repository.NewTagRepository(db)
	_, err = service.NewIndexer(extractor, tags, posts).IndexPost(context.Background(), post)
	require.NoError(t, err)

	svc := service.NewSearchService(extractor, posts, nil, nil)

	var out bytes.Buffer
	require.NoError(t, runSearch(context.Background(), svc, "cats", "", 10, &out))
	assert.Contains(t, out.String(), "\ten\tCats")

	out.Reset()
	require.NoError(t, runSearch(context.Background(), svc, "dogs", "", 10, &out))
	assert.Equal(t, "no posts found\n", out.String())
}

func TestSetupLogger_RejectsUnknownLevel(t *testing.T) {
	app := newApp()
	app.Commands = []*cli.Command{{Name: "noop", Action: func(*cli.Context) error { return nil }}}

	assert.NoError(t, app.Run([]string{"quillctl", "--log-level", "debug", "noop"}))
	assert.Error(t, app.Run([]string{"quillctl", "--log-level", "loud", "noop"}))
}

func TestSearchCommand_RequiresQuery(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run([]string{"quillctl", "search"})
	assert.EqualError(t, err, "a query is required")
}

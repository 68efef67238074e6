// Command quillctl runs maintenance tasks against a Quill database:
// tagging text, searching, re-indexing, seeding and migrating.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/htmltext"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/seed"
	"quill/internal/service"
	"quill/internal/tagging"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "quillctl",
		Usage: "Maintenance commands for the Quill blog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "tag",
				Usage:     "Tag text from stdin (or the arguments) and print the triples",
				ArgsUsage: "[text...]",
				Action:    tagCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Language of the text (en, ro)",
						Value: "en",
					},
					&cli.BoolFlag{
						Name:  "html",
						Usage: "Treat the input as HTML and extract its text first",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Print the posts matching a keyword query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Query language (en, ro); empty tries the configured languages",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of posts to print",
						Value: 20,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-tag every post",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent tagger runs (0 uses REINDEX_WORKERS)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of posts loaded per query",
						Value: 100,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Create fake users, posts and comments",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "users", Usage: "Number of users to create", Value: 10},
					&cli.IntFlag{Name: "posts", Usage: "Posts per user", Value: 5},
					&cli.IntFlag{Name: "comments", Usage: "Comments per post", Value: 2},
					&cli.Int64Flag{Name: "seed", Usage: "Random seed for reproducible content"},
					&cli.Float64Flag{Name: "romanian", Usage: "Fraction of posts written in Romanian"},
					&cli.BoolFlag{Name: "no-index", Usage: "Skip tagging the seeded posts"},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrateCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// env bundles what the database commands share.
type env struct {
	cfg       *config.Config
	db        *gorm.DB
	extractor *tagging.Extractor
	posts     repository.PostRepository
	tags      repository.TagRepository
	users     repository.UserRepository
}

func openEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	cache.InitRedis(cfg.RedisURL)

	return &env{
		cfg:       cfg,
		db:        db,
		extractor: tagging.NewExtractor(tagging.NewTreeTagger(cfg.TaggerCommands())),
		posts:     repository.NewPostRepository(db),
		tags:      repository.NewTagRepository(db),
		users:     repository.NewUserRepository(db),
	}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if rdb := cache.GetClient(); rdb != nil {
		_ = rdb.Close()
	}
}

func (e *env) indexer(workers, batchSize int) *service.Indexer {
	if workers <= 0 {
		workers = e.cfg.ReindexWorkers
	}
	return service.NewIndexer(e.extractor, e.tags, e.posts,
		service.WithWorkers(workers),
		service.WithBatchSize(batchSize),
		service.WithIndexerLogger(slog.Default()),
	)
}

func tagCommand(c *cli.Context) error {
	lang, err := models.ParseLanguage(c.String("lang"))
	if err != nil {
		return err
	}

	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		raw, err := io.ReadAll(bufio.NewReader(c.App.Reader))
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	return runTag(c.Context, tagging.NewTreeTagger(cfg.TaggerCommands()), text, lang, c.Bool("html"), c.App.Writer)
}

// runTag writes one JSON triple per line.
func runTag(ctx context.Context, engine tagging.Engine, text string, lang models.Language, html bool, w io.Writer) error {
	if html {
		text = htmltext.ToText(text)
	}
	triples, err := tagging.NewExtractor(engine).ExtractTags(ctx, text, lang)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, t := range triples {
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	var lang models.Language
	if raw := c.String("lang"); raw != "" {
		parsed, err := models.ParseLanguage(raw)
		if err != nil {
			return err
		}
		lang = parsed
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	svc := service.NewSearchService(e.extractor, e.posts, e.cfg.SearchLanguageList(), slog.Default())
	return runSearch(c.Context, svc, strings.Join(c.Args().Slice(), " "), lang, c.Int("limit"), c.App.Writer)
}

func runSearch(ctx context.Context, svc *service.SearchService, query string, lang models.Language, limit int, w io.Writer) error {
	posts, err := svc.Search(ctx, service.SearchInput{Query: query, Language: lang, Limit: limit})
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "no posts found")
		return err
	}
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Language, p.Title); err != nil {
			return err
		}
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	stats, err := e.indexer(c.Int("workers"), c.Int("batch-size")).ReindexAll(c.Context)
	if err != nil {
		return err
	}
	slog.Info("reindex complete",
		slog.Int64("posts", stats.Posts),
		slog.Int64("failed", stats.Failed),
		slog.Int64("tags", stats.Tags),
	)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d posts failed to index", stats.Failed, stats.Posts)
	}
	return nil
}

func seedCommand(c *cli.Context) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	res, err := seed.Run(c.Context, e.db, seed.Options{
		Users:           c.Int("users"),
		PostsPerUser:    c.Int("posts"),
		CommentsPerPost: c.Int("comments"),
		Seed:            c.Int64("seed"),
		RomanianShare:   c.Float64("romanian"),
	}, slog.Default())
	if err != nil {
		return err
	}

	if !c.Bool("no-index") {
		ix := e.indexer(0, 100)
		failed := 0
		for _, p := range res.Posts {
			if _, err := ix.IndexPost(c.Context, p); err != nil {
				failed++
				slog.Warn("seeded post not indexed", slog.Uint64("post_id", uint64(p.ID)), slog.String("error", err.Error()))
			}
		}
		if failed > 0 {
			slog.Warn("some seeded posts have no tags; run quillctl reindex once the tagger is configured",
				slog.Int("failed", failed))
		}
	}

	_, err = fmt.Fprintf(c.App.Writer, "seeded %d users, %d posts, %d comments (password %q)\n",
		len(res.Users), len(res.Posts), res.Comments, seed.DefaultPassword)
	return err
}

func migrateCommand(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	dialector, err := database.Dialector(cfg)
	if err != nil {
		return err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: database.NewGormLogger(slog.Default(), gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := database.Migrate(db); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, "schema up to date")
	return err
}

// Package service holds the application's business logic on top of the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"quill/internal/htmltext"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/tagging"

	"github.com/panjf2000/ants/v2"
)

// TagExtractor is implemented by tagging.Extractor.
type TagExtractor interface {
	ExtractTags(ctx context.Context, text string, lang models.Language) ([]tagging.Triple, error)
	ExtractTagSet(ctx context.Context, text string, lang models.Language) ([]string, error)
}

// Indexer keeps a post's tags in sync with its content.
type Indexer struct {
	extractor TagExtractor
	tags      repository.TagRepository
	posts     repository.PostRepository
	workers   int
	batchSize int
	logger    *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithWorkers sets the ReindexAll pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// WithBatchSize sets how many posts ReindexAll loads per query.
func WithBatchSize(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// WithIndexerLogger sets a custom logger.
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndexer creates an Indexer.
func NewIndexer(extractor TagExtractor, tags repository.TagRepository, posts repository.PostRepository, opts ...IndexerOption) *Indexer {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	ix := &Indexer{
		extractor: extractor,
		tags:      tags,
		posts:     posts,
		workers:   workers,
		batchSize: 100,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexPost re-tags post in its own language and replaces its stored tags.
// It returns the number of tag rows stored. When tagging fails the post's
// previous tags are dropped, since they describe content that is gone.
func (ix *Indexer) IndexPost(ctx context.Context, post *models.Post) (int, error) {
	lang := post.Language
	if lang == "" {
		lang = models.LanguageEnglish
	}
	triples, err := ix.extractor.ExtractTags(ctx, htmltext.ToText(post.Content), lang)
	if err != nil {
		err = fmt.Errorf("tagging post %d: %w", post.ID, err)
		if delErr := ix.tags.DeleteForPost(ctx, post.ID); delErr != nil {
			err = errors.Join(err, fmt.Errorf("clearing tags of post %d: %w", post.ID, delErr))
		}
		return 0, err
	}
	stored, err := ix.tags.ReplaceForPost(ctx, post.ID, post.UserID, triples)
	if err != nil {
		return 0, fmt.Errorf("storing tags of post %d: %w", post.ID, err)
	}
	return stored, nil
}

// ReindexStats summarises a ReindexAll run.
type ReindexStats struct {
	Posts  int64 `json:"posts"`
	Failed int64 `json:"failed"`
	Tags   int64 `json:"tags"`
}

// ReindexAll re-tags every post on a bounded worker pool. A failing post is
// logged and counted; it never stops the run. Only a failure to enumerate
// posts, or ctx cancellation, is returned.
func (ix *Indexer) ReindexAll(ctx context.Context) (ReindexStats, error) {
	pool, err := ants.NewPool(ix.workers)
	if err != nil {
		return ReindexStats{}, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var posts, failed, stored atomic.Int64

	walkErr := ix.posts.InBatches(ctx, ix.batchSize, func(batch []*models.Post) error {
		for _, post := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				posts.Add(1)
				n, err := ix.IndexPost(ctx, post)
				if err != nil {
					failed.Add(1)
					observability.IndexFailures.WithLabelValues("reindex").Inc()
					ix.logger.WarnContext(ctx, "reindex failed",
						slog.Uint64("post_id", uint64(post.ID)),
						slog.String("error", err.Error()),
					)
					return
				}
				stored.Add(int64(n))
			})
			if submitErr != nil {
				wg.Done()
				return submitErr
			}
		}
		return nil
	})
	wg.Wait()

	stats := ReindexStats{Posts: posts.Load(), Failed: failed.Load(), Tags: stored.Load()}
	ix.logger.InfoContext(ctx, "reindex finished",
		slog.Int64("posts", stats.Posts),
		slog.Int64("failed", stats.Failed),
		slog.Int64("tags", stats.Tags),
	)
	if walkErr != nil {
		return stats, fmt.Errorf("walking posts: %w", walkErr)
	}
	return stats, nil
}

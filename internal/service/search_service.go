package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/tagging"
	"quill/internal/validation"
)

// DefaultPageSize is the listing page size when none is requested.
const DefaultPageSize = 5

// SearchService finds posts whose tags share a term with a free-text query.
type SearchService struct {
	extractor TagExtractor
	posts     repository.PostRepository
	languages []models.Language
	logger    *slog.Logger
}

// SearchInput describes one search request. An empty Query lists every post.
type SearchInput struct {
	Query    string
	Language models.Language
	Limit    int
	Offset   int
}

// NewSearchService creates a SearchService. languages are tried after the
// request language, in order; they default to English.
func NewSearchService(
	extractor TagExtractor,
	posts repository.PostRepository,
	languages []models.Language,
	logger *slog.Logger,
) *SearchService {
	if len(languages) == 0 {
		languages = []models.Language{models.LanguageEnglish}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		extractor: extractor,
		posts:     posts,
		languages: languages,
		logger:    logger,
	}
}

func (s *SearchService) Search(ctx context.Context, in SearchInput) ([]*models.Post, error) {
	query := strings.TrimSpace(in.Query)
	if len(query) > validation.MaxQueryLength {
		return nil, models.NewValidationError("Search query too long (max 500 characters)")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var terms []string
	if query != "" {
		var err error
		terms, err = s.Terms(ctx, query, in.Language)
		if err != nil {
			observability.Searches.WithLabelValues("error").Inc()
			return nil, models.NewInternalError(err)
		}
	}

	if len(terms) == 0 {
		observability.Searches.WithLabelValues("all").Inc()
		return s.posts.List(ctx, limit, in.Offset)
	}

	posts, err := s.posts.ListTagged(ctx, terms, limit, in.Offset)
	if err != nil {
		observability.Searches.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(posts) == 0 {
		observability.Searches.WithLabelValues("miss").Inc()
		return []*models.Post{}, nil
	}

	observability.Searches.WithLabelValues("hit").Inc()
	return posts, nil
}

// Terms returns the union of the query's normalized tags over the search
// languages, request language first. Languages without a tagger are skipped
// unless none is available.
func (s *SearchService) Terms(ctx context.Context, query string, lang models.Language) ([]string, error) {
	query = strings.TrimSpace(query)
	seen := map[string]struct{}{}
	terms := []string{}
	var unsupported error

	ran := 0
	for _, l := range s.searchLanguages(lang) {
		var set []string
		err := cache.Aside(ctx, cache.TermsKey(l.String(), query), &set, cache.TermsTTL, func() error {
			var extractErr error
			set, extractErr = s.extractor.ExtractTagSet(ctx, query, l)
			return extractErr
		})
		if errors.Is(err, tagging.ErrUnsupportedLanguage) {
			s.logger.DebugContext(ctx, "no tagger for search language", slog.String("lang", l.String()))
			unsupported = err
			continue
		}
		if err != nil {
			return nil, err
		}
		ran++
		for _, term := range set {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	if ran == 0 && unsupported != nil {
		return nil, unsupported
	}
	return terms, nil
}

func (s *SearchService) searchLanguages(lang models.Language) []models.Language {
	out := make([]models.Language, 0, len(s.languages)+1)
	if lang != "" {
		out = append(out, lang)
	}
	for _, l := range s.languages {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

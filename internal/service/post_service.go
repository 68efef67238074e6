package service

import (
	"context"
	"log/slog"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/validation"
)

// PostIndexer is implemented by Indexer.
type PostIndexer interface {
	IndexPost(ctx context.Context, post *models.Post) (int, error)
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	tagRepo  repository.TagRepository
	indexer  PostIndexer
	logger   *slog.Logger
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	Language string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
	// Language keeps the current value when empty.
	Language string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

type ListPostsInput struct {
	Limit  int
	Offset int
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	tagRepo repository.TagRepository,
	indexer PostIndexer,
	logger *slog.Logger,
) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		tagRepo:  tagRepo,
		indexer:  indexer,
		logger:   logger,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePost(in.Title, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	lang := models.LanguageEnglish
	if in.Language != "" {
		parsed, err := models.ParseLanguage(in.Language)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		lang = parsed
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Language: lang,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.index(ctx, post, "create")

	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if err := validation.ValidatePost(in.Title, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Language != "" {
		lang, err := models.ParseLanguage(in.Language)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Language = lang
	}

	post.Title = in.Title
	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.index(ctx, post, "update")

	return s.postRepo.GetByID(ctx, post.ID)
}

// index refreshes the post's tags. Tags are a best-effort index: a failure
// is logged and counted but never fails the save.
func (s *PostService) index(ctx context.Context, post *models.Post, trigger string) {
	if s.indexer == nil {
		return
	}
	if _, err := s.indexer.IndexPost(ctx, post); err != nil {
		observability.IndexFailures.WithLabelValues(trigger).Inc()
		s.logger.ErrorContext(ctx, "post indexing failed",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("lang", post.Language.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, in.PostID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return s.postRepo.List(ctx, limit, in.Offset)
}

// GetUserPosts lists an author's posts, newest first.
func (s *PostService) GetUserPosts(ctx context.Context, username string, limit, offset int) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return s.postRepo.GetByUserID(ctx, user.ID, limit, offset)
}

// GetPostTags returns the stored tags of an existing post.
func (s *PostService) GetPostTags(ctx context.Context, postID uint) ([]models.Tag, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	tags, err := s.tagRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

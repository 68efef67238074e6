package service

import (
	"context"
	"errors"
	"testing"

	"quill/internal/models"
	"quill/internal/tagging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	getByUserIDFn func(context.Context, uint, int, int) ([]*models.Post, error)
	listFn        func(context.Context, int, int) ([]*models.Post, error)
	listTaggedFn  func(context.Context, []string, int, int) ([]*models.Post, error)
	inBatchesFn   func(context.Context, int, func([]*models.Post) error) error
	updateFn      func(context.Context, *models.Post) error
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListTagged(ctx context.Context, terms []string, limit, offset int) ([]*models.Post, error) {
	return s.listTaggedFn(ctx, terms, limit, offset)
}
func (s *postRepoStub) InBatches(ctx context.Context, size int, fn func([]*models.Post) error) error {
	return s.inBatchesFn(ctx, size, fn)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listFn:        func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		listTaggedFn:  func(_ context.Context, _ []string, _, _ int) ([]*models.Post, error) { return nil, nil },
		inBatchesFn:   func(_ context.Context, _ int, _ func([]*models.Post) error) error { return nil },
		updateFn:      func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	replaceFn  func(context.Context, uint, uint, []tagging.Triple) (int, error)
	deleteFn   func(context.Context, uint) error
	listFn     func(context.Context, uint) ([]models.Tag, error)
	matchingFn func(context.Context, []string) ([]uint, error)
}

func (s *tagRepoStub) ReplaceForPost(ctx context.Context, postID, authorID uint, triples []tagging.Triple) (int, error) {
	return s.replaceFn(ctx, postID, authorID, triples)
}
func (s *tagRepoStub) DeleteForPost(ctx context.Context, postID uint) error {
	return s.deleteFn(ctx, postID)
}
func (s *tagRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Tag, error) {
	return s.listFn(ctx, postID)
}
func (s *tagRepoStub) PostIDsMatching(ctx context.Context, terms []string) ([]uint, error) {
	return s.matchingFn(ctx, terms)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		replaceFn:  func(_ context.Context, _, _ uint, triples []tagging.Triple) (int, error) { return len(triples), nil },
		deleteFn:   func(_ context.Context, _ uint) error { return nil },
		listFn:     func(_ context.Context, _ uint) ([]models.Tag, error) { return nil, nil },
		matchingFn: func(_ context.Context, _ []string) ([]uint, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	byUsername map[string]*models.User
}

func (s *userRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range s.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}
func (s *userRepoStub) GetByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.byUsername[username], nil
}
func (s *userRepoStub) Create(_ context.Context, _ *models.User) error { return nil }
func (s *userRepoStub) List(_ context.Context, _, _ int) ([]models.User, error) {
	return nil, nil
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn  func(context.Context, *models.Comment) error
	getByIDFn func(context.Context, uint) (*models.Comment, error)
	listFn    func(context.Context, uint) ([]*models.Comment, error)
	updateFn  func(context.Context, *models.Comment) error
	deleteFn  func(context.Context, *models.Comment) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, c *models.Comment) error {
	return s.deleteFn(ctx, c)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listFn:    func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:  func(_ context.Context, _ *models.Comment) error { return nil },
	}
}

// indexerStub records IndexPost calls.
type indexerStub struct {
	err     error
	indexed []*models.Post
}

func (s *indexerStub) IndexPost(_ context.Context, post *models.Post) (int, error) {
	cp := *post
	s.indexed = append(s.indexed, &cp)
	return 0, s.err
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

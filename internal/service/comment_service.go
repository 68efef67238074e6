package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Text      string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if err := validation.ValidateComment(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		Text:   in.Text,
		UserID: in.UserID,
		PostID: in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.ownedComment(ctx, in.UserID, in.PostID, in.CommentID, "You can only update your own comments")
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateComment(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.ownedComment(ctx, in.UserID, in.PostID, in.CommentID, "You can only delete your own comments")
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment)
}

// ownedComment loads a comment of postID and checks userID wrote it.
func (s *CommentService) ownedComment(ctx context.Context, userID, postID, commentID uint, denied string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if postID != 0 && comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError(denied)
	}
	return comment, nil
}

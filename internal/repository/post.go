package repository

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	// ListTagged pages through posts with a tag containing any of terms.
	ListTagged(ctx context.Context, terms []string, limit, offset int) ([]*models.Post, error)
	InBatches(ctx context.Context, size int, fn func(posts []*models.Post) error) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.applyPostDetails(r.db.WithContext(ctx)).
			Preload("User").
			First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListTagged returns posts with a tag matching any of terms, newest first.
// The match runs as a subquery so the number of hits never reaches the
// driver's bind parameter limit.
func (r *postRepository) ListTagged(ctx context.Context, terms []string, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	clause, args := tagTermsClause(terms)
	if clause == "" {
		return posts, nil
	}
	tagged := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.post_id").
		Where(clause, args...)
	err := r.applyPostDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("posts.id IN (?)", tagged).
		Order(newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// InBatches walks every live post in id order, size posts at a time.
func (r *postRepository) InBatches(ctx context.Context, size int, fn func(posts []*models.Post) error) error {
	var batch []*models.Post
	res := r.db.WithContext(ctx).FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("Title", "Content", "Language").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete soft-deletes the post and its comments and drops its tags in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		if models.IsNotFound(err) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

const newestFirst = "posts.created_at DESC, posts.id DESC"

// applyPostDetails adds the comment count subquery.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count")
}

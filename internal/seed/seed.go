package seed

import (
	"context"
	"fmt"
	"log/slog"

	"quill/internal/models"

	"gorm.io/gorm"
)

// Result lists what a seeding run created.
type Result struct {
	Users    []*models.User
	Posts    []*models.Post
	Comments int
}

// Run creates opts.Users users, each with opts.PostsPerUser posts, and
// opts.CommentsPerPost comments on every post from random seeded users.
// Posts are not tagged; callers index Result.Posts afterwards.
func Run(ctx context.Context, db *gorm.DB, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Users <= 0 {
		return nil, fmt.Errorf("seed: at least one user is required")
	}

	f := NewFactory(db, opts)
	res := &Result{}

	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser(ctx)
		if err != nil {
			return res, fmt.Errorf("seed user %d: %w", i, err)
		}
		res.Users = append(res.Users, user)
	}
	logger.InfoContext(ctx, "seeded users", slog.Int("count", len(res.Users)))

	for _, user := range res.Users {
		batch := make([]*models.Post, 0, opts.PostsPerUser)
		for j := 0; j < opts.PostsPerUser; j++ {
			batch = append(batch, f.BuildPost(user))
		}
		if err := f.CreatePostsBatch(ctx, batch); err != nil {
			return res, fmt.Errorf("seed posts of %s: %w", user.Username, err)
		}
		res.Posts = append(res.Posts, batch...)
	}
	logger.InfoContext(ctx, "seeded posts", slog.Int("count", len(res.Posts)))

	for _, post := range res.Posts {
		for k := 0; k < opts.CommentsPerPost; k++ {
			author := res.Users[f.faker.Number(0, len(res.Users)-1)]
			if _, err := f.CreateComment(ctx, author, post); err != nil {
				return res, fmt.Errorf("seed comment on post %d: %w", post.ID, err)
			}
			res.Comments++
		}
	}
	logger.InfoContext(ctx, "seeded comments", slog.Int("count", res.Comments))

	return res, nil
}

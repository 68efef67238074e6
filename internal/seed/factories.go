// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "Quill-Demo-Pass1!"

// Options configures a seeding run.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// MaxDays spreads post dates over the last MaxDays days.
	MaxDays int
	// Seed makes the generated content reproducible; 0 picks one from the clock.
	Seed int64
	// SkipBcrypt stores the plain password, which is faster but cannot log in.
	SkipBcrypt bool
	// RomanianShare is the fraction of posts written in Romanian.
	RomanianShare float64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed)}
}

func (f *Factory) password() (string, error) {
	if f.opts.SkipBcrypt {
		return DefaultPassword, nil
	}
	if f.hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		f.hash = string(hashed)
	}
	return f.hash, nil
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	password, err := f.password()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: fmt.Sprintf("%s%d", sanitizeUsername(f.faker.Username()), f.faker.Number(100, 999)),
		Email:    strings.ToLower(f.faker.Email()),
		Password: password,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for user without persisting it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	paragraphs := make([]string, f.faker.Number(1, 4))
	for i := range paragraphs {
		paragraphs[i] = "<p>" + f.faker.Paragraph(1, f.faker.Number(2, 5), 12, " ") + "</p>"
	}

	lang := models.LanguageEnglish
	if f.opts.RomanianShare > 0 && f.faker.Float64Range(0, 1) < f.opts.RomanianShare {
		lang = models.LanguageRomanian
	}

	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), "."),
		Content:   strings.Join(paragraphs, "\n"),
		Language:  lang,
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-back),
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample post for the given user.
func (f *Factory) CreatePost(ctx context.Context, user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.WithContext(ctx).CreateInBatches(posts, 100).Error
}

// CreateComment constructs and persists a sample comment on post by user.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:   f.faker.Sentence(f.faker.Number(4, 14)),
		UserID: user.ID,
		PostID: post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// sanitizeUsername keeps the characters a username may contain.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) < 3 {
		out = "user" + out
	}
	if len(out) > 24 {
		out = out[:24]
	}
	return out
}

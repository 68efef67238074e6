package seed

import (
	"context"
	"strings"
	"testing"

	"quill/internal/database"
	"quill/internal/models"
	"quill/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRun_CreatesRequestedCounts(t *testing.T) {
	db := setupTestDB(t)

	res, err := Run(context.Background(), db, Options{
		Users:           3,
		PostsPerUser:    2,
		CommentsPerPost: 2,
		Seed:            42,
		SkipBcrypt:      true,
	}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Len(t, res.Posts, 6)
	assert.Equal(t, 12, res.Comments)

	var posts, comments int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.EqualValues(t, 6, posts)
	assert.EqualValues(t, 12, comments)

	for _, p := range res.Posts {
		assert.NotZero(t, p.ID)
		assert.True(t, strings.HasPrefix(p.Content, "<p>"))
		assert.NoError(t, validation.ValidatePost(p.Title, p.Content))
	}
	for _, u := range res.Users {
		assert.NoError(t, validation.ValidateUsername(u.Username), u.Username)
	}
}

func TestRun_RequiresUsers(t *testing.T) {
	_, err := Run(context.Background(), setupTestDB(t), Options{}, nil)
	assert.Error(t, err)
}

func TestFactory_HashesDefaultPassword(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{Seed: 7})

	user, err := f.CreateUser(context.Background())
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))
	assert.NoError(t, validation.ValidatePassword(DefaultPassword))
}

func TestFactory_RomanianShare(t *testing.T) {
	f := NewFactory(nil, Options{Seed: 1, RomanianShare: 1})
	post := f.BuildPost(&models.User{ID: 9})
	assert.Equal(t, models.LanguageRomanian, post.Language)
	assert.Equal(t, uint(9), post.UserID)

	f = NewFactory(nil, Options{Seed: 1})
	assert.Equal(t, models.LanguageEnglish, f.BuildPost(&models.User{ID: 9}).Language)
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "jane_doe", sanitizeUsername("_jane_doe."))
	assert.Equal(t, "userab", sanitizeUsername("a.b"))
	assert.Len(t, sanitizeUsername(strings.Repeat("x", 40)), 24)
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/tagging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagStrings(tags []models.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.TagString)
	}
	return out
}

func TestTagRepository_ReplaceForPost_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "ana")
	post := seedPost(t, db, author, "Cats", time.Now())
	triples := []tagging.Triple{
		{Original: "cats", TagType: "NNS", Normalized: "cat"},
		{Original: "dogs", TagType: "NNS", Normalized: "dog"},
	}

	for i := 0; i < 2; i++ {
		stored, err := repo.ReplaceForPost(ctx, post.ID, author.ID, triples)
		require.NoError(t, err)
		assert.Equal(t, 2, stored)
	}

	tags, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog"}, tagStrings(tags))
	assert.Equal(t, author.ID, tags[0].UserID)
	assert.Equal(t, "cats", tags[0].Original)
	assert.Equal(t, "NNS", tags[0].TagType)
}

func TestTagRepository_ReplaceForPost_ReplacesPreviousSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "ana")
	post := seedPost(t, db, author, "Cats", time.Now())
	other := seedPost(t, db, author, "Birds", time.Now())

	_, err := repo.ReplaceForPost(ctx, post.ID, author.ID, []tagging.Triple{{Original: "cats", TagType: "NNS", Normalized: "cat"}})
	require.NoError(t, err)
	_, err = repo.ReplaceForPost(ctx, other.ID, author.ID, []tagging.Triple{{Original: "birds", TagType: "NNS", Normalized: "bird"}})
	require.NoError(t, err)

	_, err = repo.ReplaceForPost(ctx, post.ID, author.ID, []tagging.Triple{{Original: "ran", TagType: "VVD", Normalized: "run"}})
	require.NoError(t, err)

	tags, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"run"}, tagStrings(tags))

	tags, err = repo.ListByPost(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bird"}, tagStrings(tags), "other posts keep their tags")

	stored, err := repo.ReplaceForPost(ctx, post.ID, author.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, stored)
	tags, err = repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagRepository_ReplaceForPost_SkipsFailedRows(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tags" WHERE post_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`SAVEPOINT tag_row_0`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tags"`)).
		WillReturnError(errors.New("value too long for type character varying(255)"))
	mock.ExpectExec(regexp.QuoteMeta(`ROLLBACK TO SAVEPOINT tag_row_0`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SAVEPOINT tag_row_1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tags"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	stored, err := repo.ReplaceForPost(context.Background(), 7, 3, []tagging.Triple{
		{Original: "x", TagType: "NN", Normalized: "broken"},
		{Original: "cats", TagType: "NNS", Normalized: "cat"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_ReplaceForPost_DeleteFailureAborts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tags"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.ReplaceForPost(context.Background(), 7, 3, []tagging.Triple{{Original: "a", TagType: "DT", Normalized: "a"}})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_PostIDsMatching(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "ana")
	cats := seedPost(t, db, author, "Cats", time.Now())
	birds := seedPost(t, db, author, "Birds", time.Now())
	sale := seedPost(t, db, author, "Sale", time.Now())
	school := seedPost(t, db, author, "Școală", time.Now())

	_, err := repo.ReplaceForPost(ctx, cats.ID, author.ID, []tagging.Triple{
		{Original: "cats", TagType: "NNS", Normalized: "cat"},
		{Original: "dogs", TagType: "NNS", Normalized: "dog"},
	})
	require.NoError(t, err)
	_, err = repo.ReplaceForPost(ctx, birds.ID, author.ID, []tagging.Triple{{Original: "Birds", TagType: "NNS", Normalized: "Bird"}})
	require.NoError(t, err)
	_, err = repo.ReplaceForPost(ctx, school.ID, author.ID, []tagging.Triple{{Original: "Școala", TagType: "Ncfsry", Normalized: "Școală"}})
	require.NoError(t, err)
	_, err = repo.ReplaceForPost(ctx, sale.ID, author.ID, []tagging.Triple{{Original: "50%_off", TagType: "CD", Normalized: "50%_off"}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		terms []string
		want  []uint
	}{
		{"exact", []string{"cat"}, []uint{cats.ID}},
		{"case insensitive", []string{"BIRD"}, []uint{birds.ID}},
		{"substring", []string{"ca"}, []uint{cats.ID}},
		{"any term", []string{"dog", "bird"}, []uint{cats.ID, birds.ID}},
		{"non-ascii lower", []string{"școală"}, []uint{school.ID}},
		{"non-ascii upper", []string{"ȘCOALĂ"}, []uint{school.ID}},
		{"non-ascii substring", []string{"coală"}, []uint{school.ID}},
		{"disjoint", []string{"fish"}, []uint{}},
		{"percent is literal", []string{"%"}, []uint{sale.ID}},
		{"underscore is literal", []string{"0_"}, []uint{}},
		{"no terms", nil, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := repo.PostIDsMatching(ctx, tt.terms)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
	assert.Equal(t, "cat", escapeLike("cat"))
}

func TestTagRepository_ReplaceForPost_StoresFoldedTag(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	author := seedUser(t, db, "ana")
	post := seedPost(t, db, author, "Iarna", time.Now())
	_, err := repo.ReplaceForPost(ctx, post.ID, author.ID, []tagging.Triple{{Original: "Ștefan", TagType: "Np", Normalized: "Ștefan"}})
	require.NoError(t, err)

	var tag models.Tag
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&tag).Error)
	assert.Equal(t, "Ștefan", tag.TagString)
	assert.Equal(t, "ștefan", tag.TagFolded)
}

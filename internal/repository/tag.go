package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/tagging"

	"gorm.io/gorm"
)

// TagRepository stores the tagger output of each post.
type TagRepository interface {
	// ReplaceForPost swaps the post's tags for triples in one transaction.
	// A row that fails to insert is logged and skipped; only failures of the
	// delete or of the transaction itself are returned.
	ReplaceForPost(ctx context.Context, postID, authorID uint, triples []tagging.Triple) (int, error)
	DeleteForPost(ctx context.Context, postID uint) error
	ListByPost(ctx context.Context, postID uint) ([]models.Tag, error)
	// PostIDsMatching returns the distinct ids of posts with a tag_string
	// containing any of terms, ignoring case in any script.
	PostIDsMatching(ctx context.Context, terms []string) ([]uint, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) ReplaceForPost(ctx context.Context, postID, authorID uint, triples []tagging.Triple) (int, error) {
	stored := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Tag{}).Error; err != nil {
			return fmt.Errorf("deleting tags of post %d: %w", postID, err)
		}

		for i, t := range triples {
			// Postgres aborts the whole transaction on a failed statement,
			// so every row gets its own savepoint.
			sp := fmt.Sprintf("tag_row_%d", i)
			if err := tx.SavePoint(sp).Error; err != nil {
				return fmt.Errorf("savepoint: %w", err)
			}
			row := models.Tag{
				PostID:    postID,
				UserID:    authorID,
				Original:  t.Original,
				TagType:   t.TagType,
				TagString: t.Normalized,
				TagFolded: strings.ToLower(t.Normalized),
			}
			if err := tx.Create(&row).Error; err != nil {
				middleware.Logger.WarnContext(ctx, "skipping tag row",
					slog.Uint64("post_id", uint64(postID)),
					slog.String("tag_string", t.Normalized),
					slog.String("error", err.Error()),
				)
				observability.TagRowsSkipped.Inc()
				if rbErr := tx.RollbackTo(sp).Error; rbErr != nil {
					return fmt.Errorf("rollback to savepoint: %w", rbErr)
				}
				continue
			}
			stored++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	observability.TagRowsStored.Add(float64(stored))
	return stored, nil
}

func (r *tagRepository) DeleteForPost(ctx context.Context, postID uint) error {
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Tag{}).Error; err != nil {
		return fmt.Errorf("deleting tags of post %d: %w", postID, err)
	}
	return nil
}

func (r *tagRepository) ListByPost(ctx context.Context, postID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) PostIDsMatching(ctx context.Context, terms []string) ([]uint, error) {
	ids := []uint{}
	clause, args := tagTermsClause(terms)
	if clause == "" {
		return ids, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Distinct("post_id").
		Where(clause, args...).
		Order("post_id").
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("matching tags: %w", err)
	}
	return ids, nil
}

// tagTermsClause ORs one substring match per non-empty term against the
// folded tag column. It returns "" when no term remains.
func tagTermsClause(terms []string) (string, []interface{}) {
	conds := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			continue
		}
		conds = append(conds, `tags.tag_string_folded LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package models

import "time"

// Tag is one tagger record derived from a post's content: the surface form,
// its part-of-speech code and the lemma the search matches against.
// Tags are replaced wholesale whenever the post is saved.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Original  string    `gorm:"size:255;not null" json:"original"`
	TagType   string    `gorm:"size:32;not null" json:"tag_type"`
	TagString string    `gorm:"size:255;not null" json:"tag_string"`
	// TagFolded is TagString lowercased in Go; SQLite's LOWER only folds ASCII.
	TagFolded string    `gorm:"column:tag_string_folded;size:255;not null;default:'';index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. Content holds the HTML produced by the editor;
// Language selects the tagger used to index it.
type Post struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Title     string   `gorm:"size:200;not null" json:"title"`
	Content   string   `gorm:"type:text;not null" json:"content"`
	Language  Language `gorm:"size:2;not null;default:en" json:"lang"`
	UserID    uint     `gorm:"not null;index" json:"user_id"`
	User      User     `gorm:"foreignKey:UserID" json:"author"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"->;-:migration" json:"comments_count"`
	CreatedAt     time.Time      `gorm:"index" json:"date_posted"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

package entities

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Reading streaks, updated on every reading-state mutation
	CurrentStreak  int        `gorm:"default:0" json:"current_streak"`
	LongestStreak  int        `gorm:"default:0" json:"longest_streak"`
	LastActiveDate *time.Time `json:"last_active_date,omitempty"`
}

// Progress is the single reading position a user holds in a book.
// One row per (user, isbn); writes overwrite, last write wins.
type Progress struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	UserID     uint      `gorm:"uniqueIndex:idx_progress_user_isbn" json:"user_id"`
	ISBN       string    `gorm:"uniqueIndex:idx_progress_user_isbn;size:13" json:"isbn"`
	Position   float64   `json:"position"` // Percent through the book, 0-100
	LastReadAt time.Time `json:"last_read_at"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_bookmark_user_isbn_pos" json:"user_id"`
	ISBN      string    `gorm:"uniqueIndex:idx_bookmark_user_isbn_pos;size:13" json:"isbn"`
	Position  float64   `gorm:"uniqueIndex:idx_bookmark_user_isbn_pos" json:"position"`
	Text      string    `gorm:"size:200" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

type Highlight struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index:idx_highlight_user_isbn" json:"user_id"`
	ISBN          string    `gorm:"index:idx_highlight_user_isbn;size:13" json:"isbn"`
	StartPosition float64   `json:"start_position"`
	EndPosition   float64   `json:"end_position"`
	Color         string    `gorm:"size:20;default:'yellow'" json:"color"`
	Text          string    `gorm:"type:text" json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	User          User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (Progress) TableName() string {
	return "progress"
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

func (Highlight) TableName() string {
	return "highlights"
}

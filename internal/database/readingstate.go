package database

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/athenareader/athena/internal/entities"
)

var (
	// ErrDuplicateBookmark means the user already has a bookmark at that
	// position in that book.
	ErrDuplicateBookmark = errors.New("bookmark already exists at this position")

	// ErrInvalidRange means a highlight's positions are out of order or
	// outside the 0-100 range.
	ErrInvalidRange = errors.New("invalid highlight range")
)

// maxBookmarkNote bounds the optional note attached to a bookmark, in runes.
const maxBookmarkNote = 200

// clampPercent forces a reading position into [0, 100].
func clampPercent(p float64) float64 {
	return math.Min(100, math.Max(0, p))
}

// bucketPosition rounds a position to two decimal places. Bookmark
// uniqueness is enforced on the bucketed value so float noise from clients
// does not produce near-duplicate bookmarks.
func bucketPosition(p float64) float64 {
	return math.Round(p*100) / 100
}

// SetProgress records the user's position in a book, overwriting any
// previous position. Last write wins.
func (d *Database) SetProgress(userID uint, isbn string, position float64) (*entities.Progress, error) {
	position = clampPercent(position)

	var progress entities.Progress
	err := d.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND isbn = ?", userID, isbn).First(&progress)
		if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		progress.UserID = userID
		progress.ISBN = isbn
		progress.Position = position
		progress.LastReadAt = time.Now()

		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		return d.touchStreak(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetProgress returns the user's position in a book, or nil when the user
// has never reported progress for it.
func (d *Database) GetProgress(userID uint, isbn string) (*entities.Progress, error) {
	var progress entities.Progress
	err := d.DB.Where("user_id = ? AND isbn = ?", userID, isbn).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListProgress returns all of the user's progress records, most recently
// read first. Ties break on ISBN so the order is stable.
func (d *Database) ListProgress(userID uint) ([]entities.Progress, error) {
	var records []entities.Progress
	err := d.DB.Where("user_id = ?", userID).
		Order("last_read_at DESC, isbn ASC").
		Find(&records).Error
	return records, err
}

// AddBookmark stores a bookmark at a position in a book. Positions are
// bucketed to two decimal places; a second bookmark in the same bucket is
// rejected with ErrDuplicateBookmark.
func (d *Database) AddBookmark(userID uint, isbn string, position float64, text string) (*entities.Bookmark, error) {
	bookmark := &entities.Bookmark{
		UserID:   userID,
		ISBN:     isbn,
		Position: bucketPosition(clampPercent(position)),
		Text:     truncateRunes(text, maxBookmarkNote),
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bookmark).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateBookmark
			}
			return err
		}
		return d.touchStreak(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

// ListBookmarks returns the user's bookmarks in a book, ordered by position.
func (d *Database) ListBookmarks(userID uint, isbn string) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := d.DB.Where("user_id = ? AND isbn = ?", userID, isbn).
		Order("position ASC").
		Find(&bookmarks).Error
	return bookmarks, err
}

// RemoveBookmark deletes the bookmark at a position. Removing a bookmark
// that does not exist is not an error.
func (d *Database) RemoveBookmark(userID uint, isbn string, position float64) error {
	return d.DB.Where("user_id = ? AND isbn = ? AND position = ?",
		userID, isbn, bucketPosition(clampPercent(position))).
		Delete(&entities.Bookmark{}).Error
}

// AddHighlight stores a highlighted passage. The range must satisfy
// 0 <= start <= end <= 100; the color defaults to yellow.
func (d *Database) AddHighlight(userID uint, isbn string, start, end float64, color, text string) (*entities.Highlight, error) {
	if start < 0 || end > 100 || start > end {
		return nil, ErrInvalidRange
	}
	if color == "" {
		color = "yellow"
	}

	highlight := &entities.Highlight{
		UserID:        userID,
		ISBN:          isbn,
		StartPosition: start,
		EndPosition:   end,
		Color:         color,
		Text:          text,
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(highlight).Error; err != nil {
			return err
		}
		return d.touchStreak(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return highlight, nil
}

// ListHighlights returns the user's highlights in a book, ordered by start
// position, then creation time.
func (d *Database) ListHighlights(userID uint, isbn string) ([]entities.Highlight, error) {
	var highlights []entities.Highlight
	err := d.DB.Where("user_id = ? AND isbn = ?", userID, isbn).
		Order("start_position ASC, created_at ASC").
		Find(&highlights).Error
	return highlights, err
}

// RemoveHighlight deletes one highlight by ID, scoped to the user and book
// so users cannot delete each other's highlights. Idempotent.
func (d *Database) RemoveHighlight(userID uint, isbn string, id uint) error {
	return d.DB.Where("user_id = ? AND isbn = ? AND id = ?", userID, isbn, id).
		Delete(&entities.Highlight{}).Error
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

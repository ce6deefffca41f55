// Package database persists users and per-user reading state in SQLite.
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/athenareader/athena/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Progress{},
		&entities.Bookmark{},
		&entities.Highlight{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) CreateUser(username, email, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := d.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := d.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user together with all of their reading state.
func (d *Database) DeleteUser(id uint) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&entities.Progress{}, &entities.Bookmark{}, &entities.Highlight{}} {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entities.User{}, id).Error
	})
}

// touchStreak records reading activity for today and updates the user's
// streak counters. Activity on consecutive days extends the streak, a gap
// resets it.
func (d *Database) touchStreak(tx *gorm.DB, userID uint) error {
	var user entities.User
	if err := tx.First(&user, userID).Error; err != nil {
		return err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case user.LastActiveDate == nil:
		user.CurrentStreak = 1
	case user.LastActiveDate.Equal(today):
		return nil
	case user.LastActiveDate.Equal(today.AddDate(0, 0, -1)):
		user.CurrentStreak++
	default:
		user.CurrentStreak = 1
	}

	if user.CurrentStreak > user.LongestStreak {
		user.LongestStreak = user.CurrentStreak
	}
	user.LastActiveDate = &today

	return tx.Save(&user).Error
}

// Package tokens provides database operations for session tokens.
//
// A user holds at most one live token. Replace enforces that invariant
// atomically: the delete of prior rows and the insert of the new one
// commit together, so a crash mid-way can never leave two live tokens.
package tokens

import (
	"time"

	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/entities"
)

// Repository handles all token database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tokens repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Replace deletes every token owned by the user and inserts the new
// value, all in one transaction.
func (r *Repository) Replace(userID uint, value string) (*entities.Token, error) {
	token := &entities.Token{
		UserID:    userID,
		Token:     value,
		CreatedAt: time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entities.Token{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// GetUserByValue resolves a token value to its owning user. Indexed
// exact-match lookup: this runs once per protected request.
func (r *Repository) GetUserByValue(value string) (*entities.User, error) {
	var token entities.Token
	err := r.db.Preload("User").Where("token = ?", value).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token.User, nil
}

// DeleteByValue removes a single token row (logout).
func (r *Repository) DeleteByValue(value string) error {
	return r.db.Where("token = ?", value).Delete(&entities.Token{}).Error
}

// CountForUser returns the number of live tokens a user holds.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Token{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

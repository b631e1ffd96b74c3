// Package books provides database operations for library items.
//
// Soft delete is modelled with a boolean flag rather than a timestamp:
// the API exposes an explicit restore transition, and every mutation
// guards the flag in its WHERE clause so state transitions are strict.
package books

import (
	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new active book.
func (r *Repository) Create(book *entities.Book) error {
	book.Deleted = false
	return r.db.Create(book).Error
}

// GetActiveByID retrieves a non-deleted book.
func (r *Repository) GetActiveByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND deleted = ?", id, false).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAnyByID retrieves a book regardless of its deleted flag. Used for
// ownership and state checks ahead of delete/restore transitions.
func (r *Repository) GetAnyByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListActiveByAuthor returns the non-deleted books owned by a user.
func (r *Repository) ListActiveByAuthor(authorID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("author_id = ? AND deleted = ?", authorID, false).
		Order("id").Find(&books).Error
	return books, err
}

// Update rewrites title, content and cover URL of an active book owned
// by authorID. Returns gorm.ErrRecordNotFound when no row matched.
func (r *Repository) Update(id, authorID uint, title, content, coverURL string) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND author_id = ? AND deleted = ?", id, authorID, false).
		Updates(map[string]any{
			"title":     title,
			"content":   content,
			"cover_url": coverURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDelete flips an active book to deleted. The deleted guard in the
// WHERE clause makes deleting an already-deleted book a reported
// failure, not a silent success.
func (r *Repository) SoftDelete(id, authorID uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND author_id = ? AND deleted = ?", id, authorID, false).
		Update("deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Restore flips a deleted book back to active.
func (r *Repository) Restore(id, authorID uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND author_id = ? AND deleted = ?", id, authorID, true).
		Update("deleted", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

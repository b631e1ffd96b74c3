// Package users provides database operations for account records.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByUsername("alice")
package users

import (
	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user with an already-hashed password.
func (r *Repository) Create(username, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by exact username. SQLite's default
// BINARY collation keeps the match case-sensitive.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by ID.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("id").Find(&users).Error
	return users, err
}

// Exists reports whether a user with the given ID exists.
func (r *Repository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Package grants provides database operations for library access grants.
package grants

import (
	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/entities"
)

// Repository handles all grant database operations. Grants are
// insert-and-lookup only: no revocation is exposed anywhere.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new grants repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Exists reports whether the owner has granted read access to the user.
func (r *Repository) Exists(ownerID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Grant{}).
		Where("owner_id = ? AND user_id = ?", ownerID, userID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the grant edge. Granting twice is a no-op success.
func (r *Repository) Create(ownerID, userID uint) error {
	exists, err := r.Exists(ownerID, userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return r.db.Create(&entities.Grant{OwnerID: ownerID, UserID: userID}).Error
}

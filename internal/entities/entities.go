package entities

import (
	"time"
)

// User is a registered account. The password hash never leaves the
// persistence layer in API responses.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Token is an opaque bearer credential bound to one user. At most one
// token row exists per user: issuing a new one replaces all prior rows.
type Token struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Grant is a directed read-only permission edge: the owner lets the
// grantee view the owner's library. The pair is unique; owners never
// need an edge to themselves.
type Grant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"uniqueIndex:idx_grant_edge" json:"owner_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_grant_edge" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the relation name the SPA's API contract was built
// against.
func (Grant) TableName() string {
	return "authorizations"
}

// Book is an owned content record with a soft-delete flag. Deleted books
// are invisible to reads and listings until restored by their owner.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:512" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	AuthorID  uint      `gorm:"index" json:"author_id"`
	CoverURL  string    `gorm:"size:2048" json:"cover_url,omitempty"`
	Deleted   bool      `gorm:"index;default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

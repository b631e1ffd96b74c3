// Package access implements the access-control gate: per-library read
// authorization, owner-only write authorization, and grant issuance.
package access

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/database/grants"
	"github.com/avolkau/bookvault/internal/database/users"
)

var (
	ErrSelfGrant       = errors.New("cannot grant access to yourself")
	ErrGranteeNotFound = errors.New("user not found")
)

// Service decides allow/deny for library resources given an
// authenticated identity. Identities arrive as explicit parameters;
// there is no ambient request state here.
type Service struct {
	users  *users.Repository
	grants *grants.Repository
}

// NewService creates a new access control service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		users:  users.NewRepository(db),
		grants: grants.NewRepository(db),
	}
}

// CanReadLibrary reports whether the requester may view the owner's
// library. Owners always read their own; everyone else needs a grant
// edge owner → requester.
func (s *Service) CanReadLibrary(requesterID, ownerID uint) (bool, error) {
	if requesterID == ownerID {
		return true, nil
	}
	return s.grants.Exists(ownerID, requesterID)
}

// CanWriteBook reports whether the requester may mutate a book owned by
// bookOwnerID. Write never delegates: grants are read-only.
func (s *Service) CanWriteBook(requesterID, bookOwnerID uint) bool {
	return requesterID == bookOwnerID
}

// Grant lets ownerID share read access with granteeID. Self-grants are
// rejected (owners already hold full access), unknown grantees are
// reported, and repeat grants succeed without duplication.
func (s *Service) Grant(ownerID, granteeID uint) error {
	if ownerID == granteeID {
		return ErrSelfGrant
	}

	exists, err := s.users.Exists(granteeID)
	if err != nil {
		return fmt.Errorf("failed to look up grantee: %w", err)
	}
	if !exists {
		return ErrGranteeNotFound
	}

	return s.grants.Create(ownerID, granteeID)
}

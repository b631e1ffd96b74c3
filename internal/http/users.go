package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/bookvault/internal/access"
	"github.com/avolkau/bookvault/internal/auth"
	"github.com/avolkau/bookvault/internal/database/users"
)

// UsersController handles the user directory and access grants.
type UsersController struct {
	users  *users.Repository
	access *access.Service
}

// NewUsersController creates a new users controller.
func NewUsersController(repo *users.Repository, accessService *access.Service) *UsersController {
	return &UsersController{users: repo, access: accessService}
}

// RegisterRoutes registers user endpoints on the authenticated group.
func (uc *UsersController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/users", uc.ListUsers)
	api.POST("/users/:id/grant", uc.GrantAccess)
}

type userSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ListUsers returns every registered user. An empty directory is a
// valid 200 with an empty array.
func (uc *UsersController) ListUsers(c *gin.Context) {
	all, err := uc.users.List()
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		respondError(c, http.StatusInternalServerError, "failed to load users")
		return
	}

	summaries := make([]userSummary, 0, len(all))
	for _, user := range all {
		summaries = append(summaries, userSummary{ID: user.ID, Username: user.Username})
	}

	c.JSON(http.StatusOK, summaries)
}

// GrantAccess shares the caller's library with another user. The grant
// is read-only, directed and idempotent; there is no revocation.
func (uc *UsersController) GrantAccess(c *gin.Context) {
	granteeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ownerID := auth.GetUserID(c)

	err := uc.access.Grant(ownerID, granteeID)
	switch {
	case err == nil:
		respondSuccess(c, http.StatusOK)
	case errors.Is(err, access.ErrSelfGrant):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrGranteeNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		log.Printf("Failed to grant access from user %d to user %d: %v", ownerID, granteeID, err)
		respondError(c, http.StatusInternalServerError, "failed to grant access")
	}
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/bookvault/internal/entities"
)

// Context keys for the authenticated identity. The identity rides the
// request context; nothing here is process-global.
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyToken    = "auth_token"
)

// Middleware resolves bearer tokens to identities for protected routes.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// Handler returns a gin handler that authenticates every request it is
// mounted on. Missing or invalid credentials short-circuit with 401
// before any handler logic runs.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "authorization required",
			})
			return
		}

		user, err := m.service.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid authorization token",
			})
			return
		}

		setUserContext(c, user, token)
		c.Next()
	}
}

// extractBearerToken pulls the token out of "Authorization: Bearer <t>".
func extractBearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// setUserContext stores the authenticated identity in the gin context.
func setUserContext(c *gin.Context, user *entities.User, token string) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyToken, token)
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the request was not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetToken retrieves the bearer token the request authenticated with.
func GetToken(c *gin.Context) string {
	if t, exists := c.Get(ContextKeyToken); exists {
		if token, ok := t.(string); ok {
			return token
		}
	}
	return ""
}

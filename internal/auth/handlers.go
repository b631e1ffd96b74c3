package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/bookvault/internal/entities"
)

// Controller handles authentication HTTP endpoints.
type Controller struct {
	service *Service
}

// NewController creates a new authentication controller.
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (ac *Controller) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.POST("/auth", ac.Login)
	api.POST("/auth/register", ac.Register)
}

// RegisterProtectedRoutes mounts endpoints that require a valid token.
func (ac *Controller) RegisterProtectedRoutes(api *gin.RouterGroup) {
	api.POST("/auth/logout", ac.Logout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type authResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    authedUser `json:"user"`
}

type authedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Login handles POST /api/auth.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondAuthError(c, ErrFieldsRequired)
		return
	}

	user, token, err := ac.service.Login(req.Username, req.Password)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(user, token))
}

// Register handles POST /api/auth/register.
func (ac *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondAuthError(c, ErrFieldsRequired)
		return
	}

	user, token, err := ac.service.Register(req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(user, token))
}

// Logout handles POST /api/auth/logout. The token used to authenticate
// this very request is deleted.
func (ac *Controller) Logout(c *gin.Context) {
	if err := ac.service.Logout(GetToken(c)); err != nil {
		log.Printf("Failed to delete token on logout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to log out",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func newAuthResponse(user *entities.User, token string) authResponse {
	return authResponse{
		Success: true,
		Token:   token,
		User:    authedUser{ID: user.ID, Username: user.Username},
	}
}

// respondAuthError maps service errors onto the original API's status
// codes and message body shape.
func respondAuthError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, ErrFieldsRequired),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrUserExists),
		errors.Is(err, ErrPasswordTooLong):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidPassword):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		log.Printf("Auth error: %v", err)
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

// Package http wires the REST API: route registration, request
// binding, and translation of service errors into the JSON error shape
// shared by every endpoint.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkau/bookvault/internal/access"
	"github.com/avolkau/bookvault/internal/auth"
	"github.com/avolkau/bookvault/internal/catalog"
	"github.com/avolkau/bookvault/internal/covers"
	"github.com/avolkau/bookvault/internal/database"
	"github.com/avolkau/bookvault/internal/database/books"
	"github.com/avolkau/bookvault/internal/database/users"
	"github.com/avolkau/bookvault/internal/tasks"
)

// RouterConfig holds the dependencies the router hands to controllers.
type RouterConfig struct {
	Database       *database.Database
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	AccessService  *access.Service
	CatalogClient  catalog.Client
	CoverCache     *covers.Cache
	TaskClient     *tasks.Client
	Version        string
}

// NewRouter builds the gin engine. Everything under /api except the
// login and registration endpoints requires a bearer token.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	booksRepo := books.NewRepository(cfg.Database.DB)
	usersRepo := users.NewRepository(cfg.Database.DB)

	authController := auth.NewController(cfg.AuthService)
	booksController := NewBooksController(booksRepo, cfg.AccessService, cfg.CoverCache, cfg.TaskClient)
	usersController := NewUsersController(usersRepo, cfg.AccessService)
	searchController := NewSearchController(cfg.CatalogClient, booksRepo, cfg.TaskClient)
	coversController := NewCoversController(booksRepo, cfg.AccessService, cfg.CoverCache)
	healthController := NewHealthController(cfg.Database, cfg.Version)

	router.GET("/health", healthController.Health)

	public := router.Group("/api")
	authController.RegisterPublicRoutes(public)

	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.Handler())
	authController.RegisterProtectedRoutes(protected)
	booksController.RegisterRoutes(protected)
	usersController.RegisterRoutes(protected)
	searchController.RegisterRoutes(protected)
	coversController.RegisterRoutes(protected)

	return router
}

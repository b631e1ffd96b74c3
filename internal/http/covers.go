package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/access"
	"github.com/avolkau/bookvault/internal/auth"
	"github.com/avolkau/bookvault/internal/covers"
	"github.com/avolkau/bookvault/internal/database/books"
)

// CoversController serves book cover images from the local cache.
type CoversController struct {
	books  *books.Repository
	access *access.Service
	cache  *covers.Cache
}

// NewCoversController creates a new covers controller.
func NewCoversController(repo *books.Repository, accessService *access.Service, cache *covers.Cache) *CoversController {
	return &CoversController{books: repo, access: accessService, cache: cache}
}

// RegisterRoutes registers cover endpoints on the authenticated group.
func (cc *CoversController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/books/:id/cover", cc.GetCover)
}

// GetCover serves the cached cover for a book the caller may read.
// When the cache cannot produce a file the client is redirected to the
// origin URL instead of receiving an error.
func (cc *CoversController) GetCover(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requesterID := auth.GetUserID(c)

	book, err := cc.books.GetActiveByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return
		}
		log.Printf("Failed to load book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to load book")
		return
	}

	allowed, err := cc.access.CanReadLibrary(requesterID, book.AuthorID)
	if err != nil {
		log.Printf("Failed to check access to book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to check access")
		return
	}
	if !allowed {
		respondError(c, http.StatusForbidden, "you do not have access to this book")
		return
	}

	if book.CoverURL == "" {
		respondError(c, http.StatusNotFound, "book has no cover")
		return
	}

	path, err := cc.cache.GetCover(book.ID, book.CoverURL)
	if err != nil {
		log.Printf("Cover cache miss for book %d: %v", book.ID, err)
		c.Redirect(http.StatusFound, book.CoverURL)
		return
	}

	c.File(path)
}

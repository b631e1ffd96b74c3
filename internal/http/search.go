package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/bookvault/internal/auth"
	"github.com/avolkau/bookvault/internal/catalog"
	"github.com/avolkau/bookvault/internal/database/books"
	"github.com/avolkau/bookvault/internal/entities"
	"github.com/avolkau/bookvault/internal/tasks"
)

// Content placeholder for imported volumes without a description.
const noDescription = "No description available"

// SearchController bridges the external catalog into the library:
// searching volumes and importing one as an owned book.
type SearchController struct {
	catalog catalog.Client
	books   *books.Repository
	tasks   *tasks.Client
}

// NewSearchController creates a new catalog search controller.
func NewSearchController(client catalog.Client, repo *books.Repository, taskClient *tasks.Client) *SearchController {
	return &SearchController{catalog: client, books: repo, tasks: taskClient}
}

// RegisterRoutes registers search endpoints on the authenticated group.
func (sc *SearchController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/search", sc.Search)
	api.POST("/search/:id", sc.ImportVolume)
}

// Search proxies a free-text query to the external catalog.
func (sc *SearchController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, http.StatusBadRequest, "search query is required")
		return
	}

	results, err := sc.catalog.Search(c.Request.Context(), query)
	if err != nil {
		log.Printf("Catalog search failed for %q: %v", query, err)
		respondError(c, http.StatusInternalServerError, "failed to search books")
		return
	}

	c.JSON(http.StatusOK, results)
}

// ImportVolume fetches a catalog volume by its external ID and stores
// it as a new book owned by the caller.
func (sc *SearchController) ImportVolume(c *gin.Context) {
	volumeID := c.Param("id")
	if volumeID == "" {
		respondError(c, http.StatusBadRequest, "volume id is required")
		return
	}
	userID := auth.GetUserID(c)

	volume, err := sc.catalog.FetchVolume(c.Request.Context(), volumeID)
	if err != nil {
		if errors.Is(err, catalog.ErrVolumeNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return
		}
		log.Printf("Failed to fetch volume %s: %v", volumeID, err)
		respondError(c, http.StatusInternalServerError, "failed to fetch book details")
		return
	}

	content := volume.Description
	if content == "" {
		content = noDescription
	}

	book := &entities.Book{
		Title:    volume.Title,
		Content:  content,
		AuthorID: userID,
		CoverURL: volume.CoverURL,
	}
	if err := sc.books.Create(book); err != nil {
		log.Printf("Failed to import volume %s for user %d: %v", volumeID, userID, err)
		respondError(c, http.StatusInternalServerError, "failed to save book")
		return
	}

	if sc.tasks != nil && book.CoverURL != "" {
		if _, err := sc.tasks.Add(tasks.FetchCoverTask{BookID: book.ID}).Save(); err != nil {
			log.Printf("Failed to enqueue cover fetch for book %d: %v", book.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "bookId": book.ID})
}

package http

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/avolkau/bookvault/internal/access"
	"github.com/avolkau/bookvault/internal/auth"
	"github.com/avolkau/bookvault/internal/covers"
	"github.com/avolkau/bookvault/internal/database/books"
	"github.com/avolkau/bookvault/internal/entities"
	"github.com/avolkau/bookvault/internal/tasks"
)

// BooksController handles library CRUD endpoints.
type BooksController struct {
	books  *books.Repository
	access *access.Service
	cache  *covers.Cache
	tasks  *tasks.Client
}

// NewBooksController creates a new books controller. The task client is
// optional; without it cover prefetching is skipped.
func NewBooksController(repo *books.Repository, accessService *access.Service, cache *covers.Cache, taskClient *tasks.Client) *BooksController {
	return &BooksController{
		books:  repo,
		access: accessService,
		cache:  cache,
		tasks:  taskClient,
	}
}

// RegisterRoutes registers book endpoints on the authenticated group.
func (bc *BooksController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/books", bc.ListBooks)
	api.POST("/books", bc.CreateBook)
	api.GET("/books/:id", bc.GetBook)
	api.PUT("/books/:id", bc.UpdateBook)
	api.DELETE("/books/:id", bc.DeleteBook)
	api.POST("/books/:id/restore", bc.RestoreBook)
	api.GET("/users/:id/books", bc.ListUserBooks)
}

type bookSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	CoverURL string `json:"coverUrl"`
}

type bookDetail struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID uint   `json:"authorId"`
	CoverURL string `json:"coverUrl"`
}

type bookRequest struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	CoverURL string `json:"coverUrl" form:"coverUrl"`
}

// ListBooks returns the caller's own active books.
func (bc *BooksController) ListBooks(c *gin.Context) {
	userID := auth.GetUserID(c)

	items, err := bc.books.ListActiveByAuthor(userID)
	if err != nil {
		log.Printf("Failed to list books for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "failed to load books")
		return
	}

	c.JSON(http.StatusOK, summarize(items))
}

// ListUserBooks returns another user's active books, provided the
// caller owns the library or holds a grant from its owner.
func (bc *BooksController) ListUserBooks(c *gin.Context) {
	ownerID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requesterID := auth.GetUserID(c)

	allowed, err := bc.access.CanReadLibrary(requesterID, ownerID)
	if err != nil {
		log.Printf("Failed to check library access for user %d: %v", requesterID, err)
		respondError(c, http.StatusInternalServerError, "failed to check access")
		return
	}
	if !allowed {
		respondError(c, http.StatusForbidden, "you do not have access to this user's library")
		return
	}

	items, err := bc.books.ListActiveByAuthor(ownerID)
	if err != nil {
		log.Printf("Failed to list books for user %d: %v", ownerID, err)
		respondError(c, http.StatusInternalServerError, "failed to load books")
		return
	}

	c.JSON(http.StatusOK, summarize(items))
}

// GetBook returns a single active book. Missing or deleted books report
// 404 before any permission check so that probing reveals nothing.
func (bc *BooksController) GetBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requesterID := auth.GetUserID(c)

	book, err := bc.books.GetActiveByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return
		}
		log.Printf("Failed to load book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to load book")
		return
	}

	allowed, err := bc.access.CanReadLibrary(requesterID, book.AuthorID)
	if err != nil {
		log.Printf("Failed to check access to book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to check access")
		return
	}
	if !allowed {
		respondError(c, http.StatusForbidden, "you do not have access to this book")
		return
	}

	c.JSON(http.StatusOK, bookDetail{
		ID:       book.ID,
		Title:    book.Title,
		Content:  book.Content,
		AuthorID: book.AuthorID,
		CoverURL: book.CoverURL,
	})
}

// CreateBook stores a new book owned by the caller. The payload is
// either JSON or a multipart form; a multipart "file" upload, when
// present, supplies the content.
func (bc *BooksController) CreateBook(c *gin.Context) {
	userID := auth.GetUserID(c)

	req, err := bindBookRequest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(c, http.StatusBadRequest, "book title is required")
		return
	}

	book := &entities.Book{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: userID,
		CoverURL: req.CoverURL,
	}
	if err := bc.books.Create(book); err != nil {
		log.Printf("Failed to create book for user %d: %v", userID, err)
		respondError(c, http.StatusInternalServerError, "failed to create book")
		return
	}

	bc.enqueueCoverFetch(book)

	c.JSON(http.StatusCreated, gin.H{"success": true, "bookId": book.ID})
}

// UpdateBook rewrites the title, content and cover URL of an active
// book owned by the caller.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requesterID := auth.GetUserID(c)

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		respondError(c, http.StatusBadRequest, "title and content are required")
		return
	}

	book, ok := bc.loadOwnedBook(c, bookID, requesterID, "you do not have permission to edit this book")
	if !ok {
		return
	}
	if book.Deleted {
		respondError(c, http.StatusNotFound, "book not found")
		return
	}

	if err := bc.books.Update(bookID, requesterID, req.Title, req.Content, req.CoverURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return
		}
		log.Printf("Failed to update book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to update book")
		return
	}

	if req.CoverURL != book.CoverURL {
		if bc.cache != nil {
			if err := bc.cache.InvalidateCover(bookID); err != nil {
				log.Printf("Failed to invalidate cover cache for book %d: %v", bookID, err)
			}
		}
		book.CoverURL = req.CoverURL
		bc.enqueueCoverFetch(book)
	}

	respondSuccess(c, http.StatusOK)
}

// DeleteBook soft-deletes an active book owned by the caller. Deleting
// an already-deleted book is a client error, not a no-op.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requesterID := auth.GetUserID(c)

	book, ok := bc.loadOwnedBook(c, bookID, requesterID, "you do not have permission to delete this book")
	if !ok {
		return
	}
	if book.Deleted {
		respondError(c, http.StatusBadRequest, "book is already deleted")
		return
	}

	if err := bc.books.SoftDelete(bookID, requesterID); err != nil {
		log.Printf("Failed to delete book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to delete book")
		return
	}

	respondSuccess(c, http.StatusOK)
}

// RestoreBook brings a soft-deleted book back. Restoring an active book
// is a client error.
func (bc *BooksController) RestoreBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	requesterID := auth.GetUserID(c)

	book, ok := bc.loadOwnedBook(c, bookID, requesterID, "you do not have permission to restore this book")
	if !ok {
		return
	}
	if !book.Deleted {
		respondError(c, http.StatusBadRequest, "book is not deleted")
		return
	}

	if err := bc.books.Restore(bookID, requesterID); err != nil {
		log.Printf("Failed to restore book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to restore book")
		return
	}

	respondSuccess(c, http.StatusOK)
}

// loadOwnedBook fetches a book in any state and enforces ownership.
// It writes the error response itself and reports false on failure.
func (bc *BooksController) loadOwnedBook(c *gin.Context, bookID, requesterID uint, forbiddenMessage string) (*entities.Book, bool) {
	book, err := bc.books.GetAnyByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "book not found")
			return nil, false
		}
		log.Printf("Failed to load book %d: %v", bookID, err)
		respondError(c, http.StatusInternalServerError, "failed to load book")
		return nil, false
	}
	if !bc.access.CanWriteBook(requesterID, book.AuthorID) {
		respondError(c, http.StatusForbidden, forbiddenMessage)
		return nil, false
	}
	return book, true
}

func (bc *BooksController) enqueueCoverFetch(book *entities.Book) {
	if bc.tasks == nil || book.CoverURL == "" {
		return
	}
	if _, err := bc.tasks.Add(tasks.FetchCoverTask{BookID: book.ID}).Save(); err != nil {
		log.Printf("Failed to enqueue cover fetch for book %d: %v", book.ID, err)
	}
}

func bindBookRequest(c *gin.Context) (bookRequest, error) {
	var req bookRequest

	contentType := c.ContentType()
	if contentType == "multipart/form-data" || contentType == "application/x-www-form-urlencoded" {
		if err := c.ShouldBind(&req); err != nil {
			return req, err
		}
		if req.Content == "" {
			if content, ok := readUploadedFile(c); ok {
				req.Content = content
			}
		}
		return req, nil
	}

	err := c.ShouldBindJSON(&req)
	return req, err
}

// readUploadedFile reads the optional "file" part of a multipart form.
func readUploadedFile(c *gin.Context) (string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func summarize(items []entities.Book) []bookSummary {
	summaries := make([]bookSummary, 0, len(items))
	for _, book := range items {
		summaries = append(summaries, bookSummary{
			ID:       book.ID,
			Title:    book.Title,
			CoverURL: book.CoverURL,
		})
	}
	return summaries
}

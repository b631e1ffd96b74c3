package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooks_CreateAndGet(t *testing.T) {
	env := setupEnv(t)
	userID, token := env.registerUser(t, "alice")

	w := env.request(t, "POST", "/api/books", gin.H{
		"title":    "Dune",
		"content":  "A desert planet",
		"coverUrl": "",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool `json:"success"`
		BookID  uint `json:"bookId"`
	}
	decodeJSON(t, w, &created)
	assert.True(t, created.Success)
	require.NotZero(t, created.BookID)

	w = env.request(t, "GET", "/api/books/1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var detail bookDetail
	decodeJSON(t, w, &detail)
	assert.Equal(t, "Dune", detail.Title)
	assert.Equal(t, "A desert planet", detail.Content)
	assert.Equal(t, userID, detail.AuthorID)
}

func TestBooks_CreateRequiresTitle(t *testing.T) {
	env := setupEnv(t)
	_, token := env.registerUser(t, "alice")

	w := env.request(t, "POST", "/api/books", gin.H{"content": "no title"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "book title is required")
}

func TestBooks_CreateFromFileUpload(t *testing.T) {
	env := setupEnv(t)
	_, token := env.registerUser(t, "alice")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("title", "Uploaded"))
	part, err := writer.CreateFormFile("file", "book.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("file contents become the book body"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", "/api/books", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	detail := env.request(t, "GET", "/api/books/1", nil, token)
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "file contents become the book body")
}

func TestBooks_ListOwnOnly(t *testing.T) {
	env := setupEnv(t)
	aliceID, aliceToken := env.registerUser(t, "alice")
	bobID, _ := env.registerUser(t, "bob")

	env.createBook(t, aliceID, "Alice Book")
	env.createBook(t, bobID, "Bob Book")

	w := env.request(t, "GET", "/api/books", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	var list []bookSummary
	decodeJSON(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice Book", list[0].Title)
}

func TestBooks_ListExcludesDeleted(t *testing.T) {
	env := setupEnv(t)
	aliceID, token := env.registerUser(t, "alice")

	keep := env.createBook(t, aliceID, "Keep")
	gone := env.createBook(t, aliceID, "Gone")
	require.NoError(t, env.books.SoftDelete(gone.ID, aliceID))

	w := env.request(t, "GET", "/api/books", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list []bookSummary
	decodeJSON(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestBooks_GetDeniedWithoutGrant(t *testing.T) {
	env := setupEnv(t)
	aliceID, _ := env.registerUser(t, "alice")
	_, bobToken := env.registerUser(t, "bob")

	book := env.createBook(t, aliceID, "Private")

	w := env.request(t, "GET", "/api/books/1", nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A grant from alice opens the book for bob
	_, aliceToken, err := env.auth.Login("alice", "secret")
	require.NoError(t, err)
	w = env.request(t, "POST", "/api/users/2/grant", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	// Bob's token was not touched by alice's grant
	w = env.request(t, "GET", "/api/books/1", nil, bobToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), book.Title)
}

func TestBooks_GetMissingIs404(t *testing.T) {
	env := setupEnv(t)
	_, token := env.registerUser(t, "alice")

	w := env.request(t, "GET", "/api/books/42", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "book not found")
}

func TestBooks_DeletedBookReads404(t *testing.T) {
	env := setupEnv(t)
	aliceID, token := env.registerUser(t, "alice")

	book := env.createBook(t, aliceID, "Gone")
	require.NoError(t, env.books.SoftDelete(book.ID, aliceID))

	w := env.request(t, "GET", "/api/books/1", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooks_Update(t *testing.T) {
	env := setupEnv(t)
	aliceID, token := env.registerUser(t, "alice")
	env.createBook(t, aliceID, "Old Title")

	w := env.request(t, "PUT", "/api/books/1", gin.H{
		"title":   "New Title",
		"content": "New content",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	detail := env.request(t, "GET", "/api/books/1", nil, token)
	assert.Contains(t, detail.Body.String(), "New Title")
	assert.Contains(t, detail.Body.String(), "New content")
}

func TestBooks_UpdateValidation(t *testing.T) {
	env := setupEnv(t)
	aliceID, token := env.registerUser(t, "alice")
	env.createBook(t, aliceID, "Book")

	w := env.request(t, "PUT", "/api/books/1", gin.H{"title": "Only title"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title and content are required")
}

func TestBooks_UpdateForbiddenForNonOwner(t *testing.T) {
	env := setupEnv(t)
	aliceID, aliceToken := env.registerUser(t, "alice")
	_, bobToken := env.registerUser(t, "bob")
	env.createBook(t, aliceID, "Alice Book")

	// Even a read grant does not allow writes
	w := env.request(t, "POST", "/api/users/2/grant", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "PUT", "/api/books/1", gin.H{"title": "Hacked", "content": "x"}, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBooks_UpdateDeletedIs404(t *testing.T) {
	env := setupEnv(t)
	aliceID, token := env.registerUser(t, "alice")
	book := env.createBook(t, aliceID, "Gone")
	require.NoError(t, env.books.SoftDelete(book.ID, aliceID))

	w := env.request(t, "PUT", "/api/books/1", gin.H{"title": "T", "content": "C"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooks_DeleteAndRestoreLifecycle(t *testing.T) {
	env := setupEnv(t)
	aliceID, token := env.registerUser(t, "alice")
	env.createBook(t, aliceID, "Cycle")

	w := env.request(t, "DELETE", "/api/books/1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	// Second delete is rejected
	w = env.request(t, "DELETE", "/api/books/1", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already deleted")

	w = env.request(t, "POST", "/api/books/1/restore", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	// Restoring an active book is rejected
	w = env.request(t, "POST", "/api/books/1/restore", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not deleted")

	// The book is readable again
	w = env.request(t, "GET", "/api/books/1", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBooks_DeleteForbiddenForNonOwner(t *testing.T) {
	env := setupEnv(t)
	aliceID, _ := env.registerUser(t, "alice")
	_, bobToken := env.registerUser(t, "bob")
	env.createBook(t, aliceID, "Alice Book")

	w := env.request(t, "DELETE", "/api/books/1", nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBooks_ListUserBooks(t *testing.T) {
	env := setupEnv(t)
	aliceID, aliceToken := env.registerUser(t, "alice")
	_, bobToken := env.registerUser(t, "bob")
	env.createBook(t, aliceID, "Shared Book")

	w := env.request(t, "GET", "/api/users/1/books", nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, "POST", "/api/users/2/grant", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "GET", "/api/users/1/books", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	var list []bookSummary
	decodeJSON(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Shared Book", list[0].Title)

	// The grant is directed: alice cannot read bob's library
	w = env.request(t, "GET", "/api/users/2/books", nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBooks_InvalidIDParam(t *testing.T) {
	env := setupEnv(t)
	_, token := env.registerUser(t, "alice")

	w := env.request(t, "GET", "/api/books/abc", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid id")
}

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := setupTestService(t)
	controller := NewController(svc)
	mw := NewMiddleware(svc)

	router := gin.New()
	public := router.Group("/api")
	controller.RegisterPublicRoutes(public)

	protected := router.Group("/api")
	protected.Use(mw.Handler())
	controller.RegisterProtectedRoutes(protected)

	return router, svc
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestController_Register(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := postJSON(t, router, "/api/auth/register", gin.H{
		"username":        "alice",
		"password":        "p1",
		"confirmPassword": "p1",
	}, "")

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Token, 64)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotZero(t, resp.User.ID)

	// The password hash never appears in the payload
	assert.NotContains(t, w.Body.String(), "password")
}

func TestController_Register_Validation(t *testing.T) {
	router, _ := setupAuthRouter(t)

	tests := []struct {
		name    string
		body    gin.H
		message string
	}{
		{"missing fields", gin.H{"username": "alice"}, "all fields are required"},
		{"mismatch", gin.H{"username": "alice", "password": "a", "confirmPassword": "b"}, "passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestController_Register_DuplicateUsername(t *testing.T) {
	router, _ := setupAuthRouter(t)

	body := gin.H{"username": "alice", "password": "p1", "confirmPassword": "p1"}
	w := postJSON(t, router, "/api/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username already taken")
}

func TestController_Login(t *testing.T) {
	router, svc := setupAuthRouter(t)

	_, _, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	w := postJSON(t, router, "/api/auth", gin.H{"username": "alice", "password": "p1"}, "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Token, 64)
}

func TestController_Login_Errors(t *testing.T) {
	router, svc := setupAuthRouter(t)

	_, _, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth", gin.H{"username": "bob", "password": "p1"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "user not found")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth", gin.H{"username": "alice", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "wrong password")
	})

	t.Run("missing fields", func(t *testing.T) {
		w := postJSON(t, router, "/api/auth", gin.H{"username": "alice"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestController_Logout(t *testing.T) {
	router, svc := setupAuthRouter(t)

	_, token, err := svc.Register("alice", "p1", "p1")
	require.NoError(t, err)

	w := postJSON(t, router, "/api/auth/logout", gin.H{}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// The token no longer works
	w = postJSON(t, router, "/api/auth/logout", gin.H{}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestController_Logout_RequiresToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := postJSON(t, router, "/api/auth/logout", gin.H{}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

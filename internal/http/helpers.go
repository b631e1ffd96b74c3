package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// apiError is the JSON body returned for every failed request.
type apiError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, apiError{Success: false, Message: message})
}

func respondSuccess(c *gin.Context, status int) {
	c.JSON(status, gin.H{"success": true})
}

// parseIDParam parses a numeric path parameter; on failure it writes a
// 400 response and reports false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkau/bookvault/internal/database"
)

// HealthController reports service liveness and database reachability.
type HealthController struct {
	db      *database.Database
	version string
}

// NewHealthController creates a new health controller.
func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Health reports 200 when the database answers a ping, 503 otherwise.
func (hc *HealthController) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	sqlDB, err := hc.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": hc.version,
	})
}

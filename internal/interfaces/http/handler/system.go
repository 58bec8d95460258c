package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves liveness and readiness probes
type SystemHandler struct {
	startedAt time.Time
	version   string
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(version string) *SystemHandler {
	return &SystemHandler{startedAt: time.Now(), version: version}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

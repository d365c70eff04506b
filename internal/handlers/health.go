package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	settings *services.SettingsService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(settings *services.SettingsService) *HealthHandler {
	return &HealthHandler{settings: settings}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	current := h.settings.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"timestamp":           time.Now(),
		"service":             "bigpanda-notifier",
		"changes_enabled":     current.ChangesEnabled(),
		"deployments_enabled": current.DeploymentsEnabled(),
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/logger"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
)

// CheckFieldRequest asks whether a single settings value is acceptable
type CheckFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SettingsHandler exposes the notifier settings to administrators
type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the active settings with secrets redacted
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Current().Redacted())
}

// Update validates and saves new settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req config.NotifierSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	warnings, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		var invalid *services.SettingsValidationError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_settings",
				"message": "One or more settings are invalid",
				"fields":  invalid.Fields,
			})
			return
		}
		logger.WithField("error", err.Error()).Error("Failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to save settings",
		})
		return
	}

	logger.WithFields(map[string]interface{}{
		"user_id":  c.GetString("user_id"),
		"warnings": len(warnings),
	}).Info("Settings saved by administrator")

	c.JSON(http.StatusOK, gin.H{
		"settings": h.settings.Current().Redacted(),
		"warnings": warnings,
	})
}

// CheckField validates one field the way the settings form does
func (h *SettingsHandler) CheckField(c *gin.Context) {
	var req CheckFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	msg, known := config.CheckField(req.Field, req.Value)
	if !known {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "unknown_field",
			"message": "Unknown settings field: " + req.Field,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"field":   req.Field,
		"ok":      msg == "",
		"message": msg,
	})
}

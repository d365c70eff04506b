package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/bigpanda-notifier/internal/config"
	"github.com/imyashkale/bigpanda-notifier/internal/models"
	"github.com/imyashkale/bigpanda-notifier/internal/services"
)

// EventHandler receives build lifecycle events from the CI host
type EventHandler struct {
	notifier *services.Notifier
	settings *services.SettingsService
}

// NewEventHandler creates a new event handler
func NewEventHandler(notifier *services.Notifier, settings *services.SettingsService) *EventHandler {
	return &EventHandler{
		notifier: notifier,
		settings: settings,
	}
}

type eventFunc func(c *gin.Context, settings config.NotifierSettings, event *models.BuildEvent, env services.EnvironmentSource) services.Outcome

// ChangeStarted handles a build start
func (h *EventHandler) ChangeStarted(c *gin.Context) {
	h.handle(c, func(c *gin.Context, settings config.NotifierSettings, event *models.BuildEvent, env services.EnvironmentSource) services.Outcome {
		return h.notifier.OnStarted(c.Request.Context(), settings, event, env)
	})
}

// ChangeCompleted handles a build completion
func (h *EventHandler) ChangeCompleted(c *gin.Context) {
	h.handle(c, func(c *gin.Context, settings config.NotifierSettings, event *models.BuildEvent, env services.EnvironmentSource) services.Outcome {
		return h.notifier.OnCompleted(c.Request.Context(), settings, event, env)
	})
}

// DeploymentPreBuild handles the pre-build hook of a deployment stage
func (h *EventHandler) DeploymentPreBuild(c *gin.Context) {
	h.handle(c, func(c *gin.Context, settings config.NotifierSettings, event *models.BuildEvent, _ services.EnvironmentSource) services.Outcome {
		return h.notifier.PreBuild(c.Request.Context(), settings, event)
	})
}

// DeploymentPostBuild handles the post-build hook of a deployment stage
func (h *EventHandler) DeploymentPostBuild(c *gin.Context) {
	h.handle(c, func(c *gin.Context, settings config.NotifierSettings, event *models.BuildEvent, _ services.EnvironmentSource) services.Outcome {
		return h.notifier.PostBuild(c.Request.Context(), settings, event)
	})
}

// handle binds the event and always answers 200 once the body is valid;
// delivery problems are reported in the response, never as HTTP errors.
func (h *EventHandler) handle(c *gin.Context, fn eventFunc) {
	var req models.BuildEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": err.Error(),
		})
		return
	}

	env := services.StaticEnvironment{Vars: req.Environment}
	if req.EnvironmentError != "" {
		env.Err = errors.New(req.EnvironmentError)
	}

	outcome := fn(c, h.settings.Current(), req.ToDomain(), env)
	c.JSON(http.StatusOK, outcome.ToResponse())
}

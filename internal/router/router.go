package router

import (
	"github.com/gin-gonic/gin"
	"github.com/imyashkale/bigpanda-notifier/internal/handlers"
	"github.com/imyashkale/bigpanda-notifier/internal/middleware"
)

// Setup configures and returns the application router
func Setup(
	jwtSecret string,
	healthHandler *handlers.HealthHandler,
	eventHandler *handlers.EventHandler,
	settingsHandler *handlers.SettingsHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.CORS())

	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authentication(jwtSecret))

	changes := v1.Group("/changes")
	{
		changes.POST("/started", eventHandler.ChangeStarted)
		changes.POST("/completed", eventHandler.ChangeCompleted)
	}

	deployments := v1.Group("/deployments")
	{
		deployments.POST("/prebuild", eventHandler.DeploymentPreBuild)
		deployments.POST("/postbuild", eventHandler.DeploymentPostBuild)
	}

	settings := v1.Group("/settings")
	{
		settings.GET("", settingsHandler.Get)
		settings.PUT("", settingsHandler.Update)
		settings.POST("/check", settingsHandler.CheckField)
	}

	return router
}

// Package api exposes the HTTP control surface: an action endpoint feeding
// the controller and a status endpoint for display collaborators.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/daverz/camilla-remote-control/internal/config"
	"github.com/daverz/camilla-remote-control/internal/control"
	"github.com/daverz/camilla-remote-control/pkg/logger"
)

// Versioner reports the engine's version string for the status endpoint.
type Versioner interface {
	GetVersion() (string, error)
}

// SetupRouter configures and returns the control surface router with all
// routes and middleware.
func SetupRouter(ctrl *control.Controller, engine Versioner, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())

	h := &handlers{ctrl: ctrl, engine: engine}

	r.GET("/health", h.health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/actions/:action", h.applyAction)
		v1.GET("/status", h.status)
	}

	return r
}

// requestID tags every request with an id for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
		if len(c.Errors) > 0 {
			logger.Error("request %s %s %s: %v", id, c.Request.Method, c.Request.URL.Path, c.Errors.Last())
		} else {
			logger.Debug("request %s %s %s -> %d", id, c.Request.Method, c.Request.URL.Path, c.Writer.Status())
		}
	}
}

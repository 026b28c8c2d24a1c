package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daverz/camilla-remote-control/internal/apperrors"
	"github.com/daverz/camilla-remote-control/internal/control"
	"github.com/daverz/camilla-remote-control/pkg/logger"
	"github.com/daverz/camilla-remote-control/pkg/version"
)

type handlers struct {
	ctrl   *control.Controller
	engine Versioner
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
	})
}

// applyAction decodes the action name from the original remote's vocabulary
// and applies it to the controller.
func (h *handlers) applyAction(c *gin.Context) {
	name := c.Param("action")
	action, ok := control.ParseAction(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown action", "action": name})
		return
	}
	if err := h.ctrl.Apply(action); err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "action": name})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) status(c *gin.Context) {
	st, err := h.ctrl.Status()
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	engineVersion, err := h.engine.GetVersion()
	if err != nil {
		// Status is still useful without the engine version.
		logger.Debug("status: engine version unavailable: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"topology":       st.Topology,
		"source":         st.Source,
		"volume":         st.Volume,
		"volume_db":      st.VolumeDb,
		"muted":          st.Muted,
		"engine_version": engineVersion,
	})
}

// statusFor maps the error taxonomy to HTTP statuses: engine transport
// failures are upstream errors, invariant violations are internal bugs,
// invalid input is the caller's fault.
func statusFor(err error) int {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.CodeEngine, apperrors.CodeSchema:
			return http.StatusBadGateway
		case apperrors.CodeInvalidInput:
			return http.StatusBadRequest
		case apperrors.CodeInvariant:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

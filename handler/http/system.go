package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// CheckHealth godoc
// @Summary Check service health
// @Tags system
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *Handler) CheckHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:     "healthy",
		Components: make(map[string]ComponentStatus, len(h.pingers)),
	}

	for name, ping := range h.pingers {
		if err := ping(ctx); err != nil {
			status.Components[name] = StatusDown
			status.Status = "unhealthy"
		} else {
			status.Components[name] = StatusUp
		}
	}

	sendJSON(c, http.StatusOK, status)
}

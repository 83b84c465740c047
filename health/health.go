package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ReadinessCheck interface {
	IsReady(ctx context.Context) error
	Name() string
}

type HealthHandler struct {
	checks  []ReadinessCheck
	timeout time.Duration
}

func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.IsReady(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name()] = err.Error()
			continue
		}
		results[check.Name()] = "ok"
	}

	c.JSON(status, gin.H{"checks": results})
}

func RegisterHealthRoutes(h *HealthHandler, route *gin.Engine) {
	route.GET("/health", h.Live)
	route.GET("/ready", h.Ready)
}

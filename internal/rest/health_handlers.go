package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/video-sharing-platform/internal/response"
)

const healthCheckTimeout = 2 * time.Second

type HealthHandlers struct {
	service string
	version string
	// required dependencies turn /health unhealthy when they fail
	required map[string]HealthChecker
	optional map[string]HealthChecker
}

func NewHealthHandlers(service, version string, required, optional map[string]HealthChecker) *HealthHandlers {
	return &HealthHandlers{
		service:  service,
		version:  version,
		required: required,
		optional: optional,
	}
}

// Healthcheck reports that the API is serving
// GET /api/v1/healthcheck
func (h *HealthHandlers) Healthcheck(c *gin.Context) {
	response.OK(c, gin.H{"status": "OK"}, "everything is ok")
}

// Health reports service metadata and the state of each dependency
// GET /health
func (h *HealthHandlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	dependencies := gin.H{}

	for name, checker := range h.required {
		if err := checker.Ping(ctx); err != nil {
			dependencies[name] = err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "ok"
	}
	for name, checker := range h.optional {
		if err := checker.Ping(ctx); err != nil {
			dependencies[name] = err.Error()
			if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		dependencies[name] = "ok"
	}

	c.JSON(code, gin.H{
		"status":       status,
		"service":      h.service,
		"version":      h.version,
		"time":         time.Now().UTC().Format(time.RFC3339),
		"dependencies": dependencies,
	})
}

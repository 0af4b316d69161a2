package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Handler serves the health and metrics endpoints.
type Handler struct {
	checks   map[string]Check
	metrics  http.Handler
	deadline time.Duration
}

// NewHandler creates a new handler instance. gatherer may be nil, in which
// case the default registry is exposed.
func NewHandler(gatherer prometheus.Gatherer, checks map[string]Check) *Handler {
	metrics := promhttp.Handler()
	if gatherer != nil {
		metrics = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	if checks == nil {
		checks = map[string]Check{}
	}
	return &Handler{
		checks:   checks,
		metrics:  metrics,
		deadline: 3 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
	r.GET("/metrics", h.MetricsHandler)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.deadline)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "UP"
	}

	body := gin.H{"status": "UP", "checks": results, "time": time.Now()}
	if status != http.StatusOK {
		body["status"] = "DOWN"
	}
	c.JSON(status, body)
}

func (h *Handler) MetricsHandler(c *gin.Context) {
	h.metrics.ServeHTTP(c.Writer, c.Request)
}

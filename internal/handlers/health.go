package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tripcast/api/internal/dataset"
	"github.com/tripcast/api/internal/eventbus"
	"github.com/tripcast/api/internal/llm"
	"github.com/tripcast/api/internal/middleware"
)

const (
	serviceName    = "tripcast-api"
	serviceVersion = "0.1.0"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	generator *llm.Client
	store     *dataset.Store
	mirror    *eventbus.Mirror
	hub       *eventbus.Hub
	breaker   *middleware.CircuitBreaker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(generator *llm.Client, store *dataset.Store, mirror *eventbus.Mirror,
	hub *eventbus.Hub, breaker *middleware.CircuitBreaker) *HealthHandler {
	return &HealthHandler{
		generator: generator,
		store:     store,
		mirror:    mirror,
		hub:       hub,
		breaker:   breaker,
	}
}

// HealthResponse represents the deep health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health returns basic health status. Callers use generator_configured to
// decide whether plan generation can work at all.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "healthy",
		"service":              serviceName,
		"version":              serviceVersion,
		"generator_configured": h.generator.Configured(),
	})
}

// DeepHealth returns health status with dependency checks
func (h *HealthHandler) DeepHealth(c *gin.Context) {
	deps := make(map[string]string)
	allHealthy := true

	if h.generator.Configured() {
		deps["generator"] = "configured, model " + h.generator.Model()
	} else {
		deps["generator"] = "not configured"
	}

	state := h.breaker.State()
	deps["generator_circuit"] = state.String()
	if state == middleware.CircuitOpen {
		allHealthy = false
	}

	deps["dataset"] = fmt.Sprintf("%d activities", h.store.Len())

	if h.mirror == nil {
		deps["nats"] = "not configured"
	} else if h.mirror.Connected() {
		deps["nats"] = "connected"
	} else {
		deps["nats"] = "disconnected"
		allHealthy = false
	}

	deps["debug_observers"] = strconv.Itoa(h.hub.Len())

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:       status,
		Service:      serviceName,
		Version:      serviceVersion,
		Dependencies: deps,
	})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/tenantcrm/internal/infrastructure/redis"
	"github.com/yourorg/tenantcrm/pkg/database"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *database.ConnectionPool
	redis  *redis.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.ConnectionPool, redisClient *redis.Client, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /api/health - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /ready - readiness check for orchestrators.
// Returns 200 only if all dependencies are healthy.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			checks["postgres"] = "error: " + err.Error()
			allHealthy = false
		} else {
			checks["postgres"] = "ok"
		}
	} else {
		checks["postgres"] = "not configured"
		allHealthy = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
		allHealthy = false
	}

	status := "ready"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, ReadinessResponse{Status: status, Checks: checks})

	h.logger.Debug("readiness check",
		slog.String("status", status),
		slog.String("postgres", checks["postgres"]),
		slog.String("redis", checks["redis"]),
	)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/service"
)

// AnalyticsHandler handles the dashboard aggregation endpoint
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Dashboard handles GET /api/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	dashboard, err := h.analytics.Dashboard(r.Context(), grant)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/service"
)

// ActivitiesHandler handles the activity log endpoints
type ActivitiesHandler struct {
	activities *service.ActivityService
	logger     *slog.Logger
}

// NewActivitiesHandler creates a new activities handler
func NewActivitiesHandler(activities *service.ActivityService, logger *slog.Logger) *ActivitiesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivitiesHandler{activities: activities, logger: logger}
}

// List handles GET /api/activities?customer_id=
func (h *ActivitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	activities, err := h.activities.List(r.Context(), grant, r.URL.Query().Get("customer_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if activities == nil {
		activities = []*domain.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

// Create handles POST /api/activities
func (h *ActivitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	var in service.ActivityInput
	if err := middleware.DecodeStrict(r.Body, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	activity, err := h.activities.Create(r.Context(), grant, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

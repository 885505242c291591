package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security"
	"github.com/yourorg/tenantcrm/pkg/cache"
)

// ActivityInput carries the client-settable fields of an activity entry
type ActivityInput struct {
	CustomerID  string `json:"customer_id"`
	Type        string `json:"type"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// ActivityService handles the append-only activity log. Any tenant member
// may read and write it; the policy check is kept anyway so the gate is in
// one place should that ever tighten.
type ActivityService struct {
	activities domain.ActivityRepository
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(activities domain.ActivityRepository, c *cache.Cache, logger *slog.Logger) *ActivityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityService{activities: activities, cache: c, logger: logger}
}

// List returns the tenant's activities, optionally for one customer
func (s *ActivityService) List(ctx context.Context, grant domain.Grant, customerID string) ([]*domain.Activity, error) {
	if err := security.Require(grant, security.ResourceActivity, security.ActionRead); err != nil {
		return nil, err
	}
	return s.activities.List(ctx, grant, customerID)
}

// Create appends an activity stamped with the grant's tenant and user
func (s *ActivityService) Create(ctx context.Context, grant domain.Grant, in ActivityInput) (*domain.Activity, error) {
	if err := security.Require(grant, security.ResourceActivity, security.ActionCreate); err != nil {
		return nil, err
	}
	if in.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", domain.ErrBadRequest)
	}
	if in.Type == "" || in.Subject == "" {
		return nil, fmt.Errorf("%w: type and subject are required", domain.ErrBadRequest)
	}

	activity := &domain.Activity{
		CustomerID:  in.CustomerID,
		Type:        in.Type,
		Subject:     in.Subject,
		Description: in.Description,
	}
	if err := s.activities.Create(ctx, grant, activity); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(dashboardCacheKey(grant.TenantID))
	}
	return activity, nil
}

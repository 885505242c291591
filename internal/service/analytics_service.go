package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/featureflags"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
	"github.com/yourorg/tenantcrm/pkg/cache"
)

// recentActivityWindow bounds the "recent activity" dashboard figure.
const recentActivityWindow = 30 * 24 * time.Hour

// Dashboard is the per-tenant aggregation result. All four figures come from
// independent scoped reads; the dashboard is all-or-nothing.
type Dashboard struct {
	TotalCustomers        int                           `json:"totalCustomers"`
	CustomersByStatus     map[domain.CustomerStatus]int `json:"customersByStatus"`
	TotalUsers            int                           `json:"totalUsers"`
	RecentActivitiesCount int                           `json:"recentActivitiesCount"`
}

// AnalyticsService computes dashboard aggregates from the tenant-scoped
// repositories. Results may be cached briefly per tenant; writes through the
// customer and activity services invalidate the entry.
type AnalyticsService struct {
	customers   domain.CustomerRepository
	memberships domain.MembershipRepository
	activities  domain.ActivityRepository
	cache       *cache.Cache
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	customers domain.CustomerRepository,
	memberships domain.MembershipRepository,
	activities domain.ActivityRepository,
	c *cache.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		customers:   customers,
		memberships: memberships,
		activities:  activities,
		cache:       c,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Dashboard assembles the tenant's dashboard. Any failed read fails the
// whole aggregation; a partial dashboard is never returned.
func (s *AnalyticsService) Dashboard(ctx context.Context, grant domain.Grant) (*Dashboard, error) {
	useCache := s.cache != nil && featureflags.Enabled(featureflags.DashboardCache)
	key := dashboardCacheKey(grant.TenantID)

	if useCache {
		if cached, ok := s.cache.Get(key); ok {
			metrics.ObserveDashboardCache("hit")
			return cached.(*Dashboard), nil
		}
		metrics.ObserveDashboardCache("miss")
	}

	total, err := s.customers.CountByTenant(ctx, grant)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.customers.CountByStatus(ctx, grant)
	if err != nil {
		return nil, err
	}

	team, err := s.memberships.CountByTenant(ctx, grant)
	if err != nil {
		return nil, err
	}

	recent, err := s.activities.CountSince(ctx, grant, time.Now().Add(-recentActivityWindow))
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalCustomers:        total,
		CustomersByStatus:     byStatus,
		TotalUsers:            team,
		RecentActivitiesCount: recent,
	}

	if useCache {
		s.cache.Set(key, d, s.cacheTTL)
	}
	return d, nil
}

func dashboardCacheKey(tenantID string) string {
	return "dashboard:" + tenantID
}

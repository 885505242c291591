package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
)

// StatsWorker refreshes the business gauges (tenant and customer totals) on
// a fixed interval. It is the only consumer of the unscoped count queries.
type StatsWorker struct {
	tenants   domain.TenantRepository
	customers domain.CustomerRepository
	logger    *slog.Logger
	interval  time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	tenants domain.TenantRepository,
	customers domain.CustomerRepository,
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsWorker{
		tenants:   tenants,
		customers: customers,
		logger:    logger,
		interval:  interval,
	}
}

// Start runs the refresh loop until ctx is cancelled
func (w *StatsWorker) Start(ctx context.Context) {
	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tenants, err := w.tenants.Count(ctx)
	if err != nil {
		w.logger.Warn("stats refresh: tenant count failed", slog.String("error", err.Error()))
	} else {
		metrics.SetTenantCount(tenants)
	}

	customers, err := w.customers.TotalAcrossTenants(ctx)
	if err != nil {
		w.logger.Warn("stats refresh: customer count failed", slog.String("error", err.Error()))
	} else {
		metrics.SetCustomerCount(customers)
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantcrm_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantcrm_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantcrm_authz_denials_total",
		Help: "Count of denied operations by resource and action",
	}, []string{"resource", "action"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantcrm_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	dashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantcrm_dashboard_cache_total",
		Help: "Dashboard aggregation cache lookups by result",
	}, []string{"result"})

	tenantsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenantcrm_tenants",
		Help: "Number of tenants",
	})

	customersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenantcrm_customers",
		Help: "Number of customer records across all tenants",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthzDenial counts a policy or tenant-membership denial.
func ObserveAuthzDenial(resource, action string) {
	authzDenials.WithLabelValues(resource, action).Inc()
}

// ObserveLogin counts a login attempt with a result label ("ok" or "failed").
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveDashboardCache counts a cache lookup ("hit" or "miss").
func ObserveDashboardCache(result string) {
	dashboardCache.WithLabelValues(result).Inc()
}

// SetTenantCount sets the tenants gauge; refreshed by the stats worker.
func SetTenantCount(count int) {
	if count < 0 {
		count = 0
	}
	tenantsGauge.Set(float64(count))
}

// SetCustomerCount sets the customers gauge; refreshed by the stats worker.
func SetCustomerCount(count int) {
	if count < 0 {
		count = 0
	}
	customersGauge.Set(float64(count))
}

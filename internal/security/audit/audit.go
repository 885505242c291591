package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit events for tenant-scoped mutations and
// authorization denials. It writes to the application log stream; the
// activities table is business data, not this.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, tenantID, userID, action, resource, resourceID, status string) {
	al.logger.InfoContext(ctx, "audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("tenant_id", tenantID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogCustomerChange(ctx context.Context, tenantID, userID, action, customerID string) {
	al.LogAction(ctx, tenantID, userID, action, "customer", customerID, "ok")
}

func (al *Logger) LogMembershipChange(ctx context.Context, tenantID, userID, action, membershipID string) {
	al.LogAction(ctx, tenantID, userID, action, "membership", membershipID, "ok")
}

func (al *Logger) LogDenied(ctx context.Context, tenantID, userID, action, resource string) {
	al.LogAction(ctx, tenantID, userID, action, resource, "", "denied")
}

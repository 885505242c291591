package domain

import (
	"context"
	"time"
)

// Activity is an append-only log entry against a customer: a call, an email,
// a meeting note. UserID and TenantID are stamped server-side.
type Activity struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	CustomerID  string    `json:"customer_id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityRepository defines tenant-scoped data access for activities.
// Activities are append-only; there is no update or delete.
type ActivityRepository interface {
	// List returns the tenant's activities, optionally narrowed to one
	// customer, most recent first.
	List(ctx context.Context, grant Grant, customerID string) ([]*Activity, error)
	Create(ctx context.Context, grant Grant, a *Activity) error
	CountSince(ctx context.Context, grant Grant, since time.Time) (int, error)
}

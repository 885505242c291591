package domain

import (
	"context"
	"time"
)

// CustomerStatus is the pipeline stage of a customer record.
type CustomerStatus string

const (
	StatusLead     CustomerStatus = "lead"
	StatusProspect CustomerStatus = "prospect"
	StatusActive   CustomerStatus = "active"
	StatusInactive CustomerStatus = "inactive"
)

// CustomerStatuses lists all defined statuses, in pipeline order.
var CustomerStatuses = []CustomerStatus{StatusLead, StatusProspect, StatusActive, StatusInactive}

// ValidCustomerStatus reports whether s is one of the defined statuses.
func ValidCustomerStatus(s string) bool {
	switch CustomerStatus(s) {
	case StatusLead, StatusProspect, StatusActive, StatusInactive:
		return true
	}
	return false
}

// Customer is a CRM customer record, always scoped to exactly one tenant.
// TenantID and CreatedBy are stamped server-side from the request's Grant.
type Customer struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Company    string         `json:"company"`
	Status     CustomerStatus `json:"status"`
	AssignedTo string         `json:"assigned_to,omitempty"` // user id, may be empty
	CreatedBy  string         `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CustomerUpdate carries the client-settable customer fields for an update.
// Scope fields (tenant, creator) are deliberately absent.
type CustomerUpdate struct {
	Name       string
	Email      string
	Phone      string
	Company    string
	Status     CustomerStatus
	AssignedTo string
}

// CustomerRepository defines tenant-scoped data access for customers.
// Every method filters by grant.TenantID; reads additionally filter by
// assigned_to for the sales and support roles.
type CustomerRepository interface {
	List(ctx context.Context, grant Grant) ([]*Customer, error)
	GetByID(ctx context.Context, grant Grant, id string) (*Customer, error)
	Create(ctx context.Context, grant Grant, c *Customer) error
	Update(ctx context.Context, grant Grant, id string, upd CustomerUpdate) (*Customer, error)
	Delete(ctx context.Context, grant Grant, id string) error

	CountByTenant(ctx context.Context, grant Grant) (int, error)
	CountByStatus(ctx context.Context, grant Grant) (map[CustomerStatus]int, error)

	// TotalAcrossTenants is for process-level gauges only, never request
	// handling; it is the one deliberately unscoped read.
	TotalAcrossTenants(ctx context.Context) (int, error)
}

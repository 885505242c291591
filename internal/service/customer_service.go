package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
	"github.com/yourorg/tenantcrm/internal/security"
	"github.com/yourorg/tenantcrm/internal/security/audit"
	"github.com/yourorg/tenantcrm/pkg/cache"
)

// CustomerInput carries the client-settable fields of a customer. Tenant and
// creator never appear here; they are stamped from the grant downstream.
type CustomerInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// CustomerService gates customer data access with the role policy
type CustomerService struct {
	customers domain.CustomerRepository
	cache     *cache.Cache
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customers domain.CustomerRepository, c *cache.Cache, auditLog *audit.Logger, logger *slog.Logger) *CustomerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerService{customers: customers, cache: c, audit: auditLog, logger: logger}
}

// List returns the customers the grant may see
func (s *CustomerService) List(ctx context.Context, grant domain.Grant) ([]*domain.Customer, error) {
	if err := security.Require(grant, security.ResourceCustomer, security.ActionRead); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceCustomer), string(security.ActionRead))
		return nil, err
	}
	return s.customers.List(ctx, grant)
}

// Get returns one customer within the grant's scope
func (s *CustomerService) Get(ctx context.Context, grant domain.Grant, id string) (*domain.Customer, error) {
	if err := security.Require(grant, security.ResourceCustomer, security.ActionRead); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceCustomer), string(security.ActionRead))
		return nil, err
	}
	return s.customers.GetByID(ctx, grant, id)
}

// Create validates the input and inserts a customer stamped with the grant's
// tenant and user.
func (s *CustomerService) Create(ctx context.Context, grant domain.Grant, in CustomerInput) (*domain.Customer, error) {
	if err := security.Require(grant, security.ResourceCustomer, security.ActionCreate); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceCustomer), string(security.ActionCreate))
		s.audit.LogDenied(ctx, grant.TenantID, grant.UserID, "create", "customer")
		return nil, err
	}

	status, err := validateCustomerInput(in)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Company:    in.Company,
		Status:     status,
		AssignedTo: in.AssignedTo,
	}
	if err := s.customers.Create(ctx, grant, customer); err != nil {
		return nil, err
	}

	s.invalidateDashboard(grant.TenantID)
	s.audit.LogCustomerChange(ctx, grant.TenantID, grant.UserID, "create", customer.ID)
	return customer, nil
}

// Update validates the input and rewrites a customer within the grant's tenant
func (s *CustomerService) Update(ctx context.Context, grant domain.Grant, id string, in CustomerInput) (*domain.Customer, error) {
	if err := security.Require(grant, security.ResourceCustomer, security.ActionUpdate); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceCustomer), string(security.ActionUpdate))
		s.audit.LogDenied(ctx, grant.TenantID, grant.UserID, "update", "customer")
		return nil, err
	}

	status, err := validateCustomerInput(in)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.Update(ctx, grant, id, domain.CustomerUpdate{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Company:    in.Company,
		Status:     status,
		AssignedTo: in.AssignedTo,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboard(grant.TenantID)
	s.audit.LogCustomerChange(ctx, grant.TenantID, grant.UserID, "update", id)
	return customer, nil
}

// Delete removes a customer within the grant's tenant
func (s *CustomerService) Delete(ctx context.Context, grant domain.Grant, id string) error {
	if err := security.Require(grant, security.ResourceCustomer, security.ActionDelete); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceCustomer), string(security.ActionDelete))
		s.audit.LogDenied(ctx, grant.TenantID, grant.UserID, "delete", "customer")
		return err
	}

	if err := s.customers.Delete(ctx, grant, id); err != nil {
		return err
	}

	s.invalidateDashboard(grant.TenantID)
	s.audit.LogCustomerChange(ctx, grant.TenantID, grant.UserID, "delete", id)
	return nil
}

func (s *CustomerService) invalidateDashboard(tenantID string) {
	if s.cache != nil {
		s.cache.Delete(dashboardCacheKey(tenantID))
	}
}

func validateCustomerInput(in CustomerInput) (domain.CustomerStatus, error) {
	if in.Name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrBadRequest)
	}
	if in.Status == "" {
		return domain.StatusLead, nil
	}
	if !domain.ValidCustomerStatus(in.Status) {
		return "", fmt.Errorf("%w: invalid status %q", domain.ErrBadRequest, in.Status)
	}
	return domain.CustomerStatus(in.Status), nil
}

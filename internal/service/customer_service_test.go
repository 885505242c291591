package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/audit"
	"github.com/yourorg/tenantcrm/pkg/cache"
)

func newTestCustomerService(repo *memCustomers, c *cache.Cache) *CustomerService {
	return NewCustomerService(repo, c, audit.NewLogger(nil), nil)
}

func TestCustomerCreateStampsScopeFromGrant(t *testing.T) {
	repo := newMemCustomers()
	s := newTestCustomerService(repo, nil)
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}

	customer, err := s.Create(context.Background(), grant, CustomerInput{Name: "Jane Doe", Company: "Initech"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if customer.TenantID != "tenant-1" {
		t.Fatalf("tenant must come from the grant, got %q", customer.TenantID)
	}
	if customer.CreatedBy != "u-1" {
		t.Fatalf("creator must come from the grant, got %q", customer.CreatedBy)
	}
	if customer.Status != domain.StatusLead {
		t.Fatalf("empty status should default to lead, got %q", customer.Status)
	}
}

func TestCustomerCreateRejectsInvalidStatus(t *testing.T) {
	repo := newMemCustomers()
	s := newTestCustomerService(repo, nil)
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}

	_, err := s.Create(context.Background(), grant, CustomerInput{Name: "Jane", Status: "vip"})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for unknown status, got %v", err)
	}

	_, err = s.Create(context.Background(), grant, CustomerInput{Status: "lead"})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for missing name, got %v", err)
	}
}

func TestSalesCannotDeleteCustomer(t *testing.T) {
	repo := newMemCustomers()
	s := newTestCustomerService(repo, nil)
	admin := domain.Grant{TenantID: "tenant-1", UserID: "u-admin", Role: domain.RoleAdmin}
	sales := domain.Grant{TenantID: "tenant-1", UserID: "u-sales", Role: domain.RoleSales}

	customer, err := s.Create(context.Background(), admin, CustomerInput{Name: "Keep Me"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.Delete(context.Background(), sales, customer.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for sales delete, got %v", err)
	}
	if _, ok := repo.rows[customer.ID]; !ok {
		t.Fatalf("denied delete must leave the row in place")
	}

	if err := s.Delete(context.Background(), admin, customer.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, ok := repo.rows[customer.ID]; ok {
		t.Fatalf("expected row gone after admin delete")
	}
}

func TestSupportCannotCreateOrUpdateCustomer(t *testing.T) {
	repo := newMemCustomers()
	s := newTestCustomerService(repo, nil)
	support := domain.Grant{TenantID: "tenant-1", UserID: "u-support", Role: domain.RoleSupport}

	if _, err := s.Create(context.Background(), support, CustomerInput{Name: "Nope"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for support create, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("denied create must not insert a row")
	}
	if _, err := s.Update(context.Background(), support, "c-1", CustomerInput{Name: "Nope"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for support update, got %v", err)
	}
}

func TestSalesUpdateSharesCreatePermission(t *testing.T) {
	repo := newMemCustomers()
	s := newTestCustomerService(repo, nil)
	sales := domain.Grant{TenantID: "tenant-1", UserID: "u-sales", Role: domain.RoleSales}

	customer, err := s.Create(context.Background(), sales, CustomerInput{Name: "Mine", AssignedTo: "u-sales"})
	if err != nil {
		t.Fatalf("sales create failed: %v", err)
	}

	updated, err := s.Update(context.Background(), sales, customer.ID, CustomerInput{
		Name:       "Mine Updated",
		Status:     "active",
		AssignedTo: "u-sales",
	})
	if err != nil {
		t.Fatalf("sales update failed: %v", err)
	}
	if updated.Status != domain.StatusActive {
		t.Fatalf("unexpected status after update: %q", updated.Status)
	}
}

func TestRestrictedRolesSeeOnlyAssignedCustomers(t *testing.T) {
	repo := newMemCustomers()
	s := newTestCustomerService(repo, nil)
	admin := domain.Grant{TenantID: "tenant-1", UserID: "u-admin", Role: domain.RoleAdmin}
	sales := domain.Grant{TenantID: "tenant-1", UserID: "u-sales", Role: domain.RoleSales}

	mine, err := s.Create(context.Background(), admin, CustomerInput{Name: "Mine", AssignedTo: "u-sales"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other, err := s.Create(context.Background(), admin, CustomerInput{Name: "Someone Else's", AssignedTo: "u-other"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err := s.List(context.Background(), sales)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Fatalf("sales must only see assigned customers, got %d rows", len(list))
	}

	if _, err := s.Get(context.Background(), sales, other.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unassigned customer must be invisible to sales, got %v", err)
	}

	adminList, err := s.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(adminList) != 2 {
		t.Fatalf("admin sees the whole tenant, got %d rows", len(adminList))
	}
}

func TestCustomerWritesInvalidateDashboardCache(t *testing.T) {
	repo := newMemCustomers()
	c := cache.New()
	s := newTestCustomerService(repo, c)
	grant := domain.Grant{TenantID: "tenant-1", UserID: "u-1", Role: domain.RoleAdmin}

	c.Set(dashboardCacheKey("tenant-1"), &Dashboard{TotalCustomers: 99}, time.Minute)

	if _, err := s.Create(context.Background(), grant, CustomerInput{Name: "Fresh"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, ok := c.Get(dashboardCacheKey("tenant-1")); ok {
		t.Fatalf("customer write must invalidate the tenant's dashboard entry")
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
)

// In-memory repository fakes shared by the service tests. They mirror the
// store's scoping rules: every read and write filters by the grant's tenant,
// and customer reads for sales and support are narrowed to assigned rows.

type memAuthUsers struct {
	byID    map[string]*domain.AuthUser
	byEmail map[string]*domain.AuthUser
	seq     int
}

func newMemAuthUsers() *memAuthUsers {
	return &memAuthUsers{byID: map[string]*domain.AuthUser{}, byEmail: map[string]*domain.AuthUser{}}
}

func (m *memAuthUsers) Create(ctx context.Context, u *domain.AuthUser) error {
	m.seq++
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", m.seq)
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memAuthUsers) GetByID(ctx context.Context, id string) (*domain.AuthUser, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memAuthUsers) GetByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

type memTenants struct {
	byID        map[string]*domain.Tenant
	memberships *memMemberships
	seq         int
}

func newMemTenants(memberships *memMemberships) *memTenants {
	return &memTenants{byID: map[string]*domain.Tenant{}, memberships: memberships}
}

func (m *memTenants) CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, adminUserID string) error {
	m.seq++
	if tenant.ID == "" {
		tenant.ID = fmt.Sprintf("tenant-%d", m.seq)
	}
	tenant.CreatedAt = time.Now()
	m.byID[tenant.ID] = tenant
	m.memberships.add(&domain.Membership{
		TenantID:  tenant.ID,
		UserID:    adminUserID,
		Role:      domain.RoleAdmin,
		CreatedBy: adminUserID,
	})
	return nil
}

func (m *memTenants) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if tenant, ok := m.byID[id]; ok {
		return tenant, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memTenants) Count(ctx context.Context) (int, error) {
	return len(m.byID), nil
}

type memMemberships struct {
	rows    map[string]*domain.Membership
	tenants *memTenants
	seq     int
	err     error // injected failure for all methods
}

func newMemMemberships() *memMemberships {
	return &memMemberships{rows: map[string]*domain.Membership{}}
}

func (m *memMemberships) add(row *domain.Membership) {
	m.seq++
	if row.ID == "" {
		row.ID = fmt.Sprintf("m-%d", m.seq)
	}
	row.CreatedAt = time.Now()
	m.rows[row.ID] = row
}

func (m *memMemberships) GetRole(ctx context.Context, userID, tenantID string) (domain.Role, error) {
	if m.err != nil {
		return "", m.err
	}
	for _, row := range m.rows {
		if row.UserID == userID && row.TenantID == tenantID {
			return row.Role, nil
		}
	}
	return "", domain.ErrForbidden
}

func (m *memMemberships) ListByTenant(ctx context.Context, grant domain.Grant) ([]*domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*domain.Membership{}
	for _, row := range m.rows {
		if row.TenantID == grant.TenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memMemberships) ListByUser(ctx context.Context, userID string) ([]*domain.TenantAccess, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*domain.TenantAccess{}
	for _, row := range m.rows {
		if row.UserID != userID {
			continue
		}
		access := &domain.TenantAccess{TenantID: row.TenantID, Role: row.Role}
		if m.tenants != nil {
			if tenant, ok := m.tenants.byID[row.TenantID]; ok {
				access.Tenant = *tenant
			}
		}
		out = append(out, access)
	}
	return out, nil
}

func (m *memMemberships) Create(ctx context.Context, grant domain.Grant, row *domain.Membership) error {
	if m.err != nil {
		return m.err
	}
	row.TenantID = grant.TenantID
	row.CreatedBy = grant.UserID
	m.add(row)
	return nil
}

func (m *memMemberships) UpdateRole(ctx context.Context, grant domain.Grant, id string, role domain.Role) (*domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	row, ok := m.rows[id]
	if !ok || row.TenantID != grant.TenantID {
		return nil, domain.ErrNotFound
	}
	row.Role = role
	return row, nil
}

func (m *memMemberships) Delete(ctx context.Context, grant domain.Grant, id string) error {
	if m.err != nil {
		return m.err
	}
	row, ok := m.rows[id]
	if !ok || row.TenantID != grant.TenantID {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memMemberships) CountByTenant(ctx context.Context, grant domain.Grant) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, row := range m.rows {
		if row.TenantID == grant.TenantID {
			n++
		}
	}
	return n, nil
}

type memCustomers struct {
	rows map[string]*domain.Customer
	seq  int
	err  error
}

func newMemCustomers() *memCustomers {
	return &memCustomers{rows: map[string]*domain.Customer{}}
}

func (m *memCustomers) visible(grant domain.Grant, c *domain.Customer) bool {
	if c.TenantID != grant.TenantID {
		return false
	}
	if grant.Role == domain.RoleSales || grant.Role == domain.RoleSupport {
		return c.AssignedTo == grant.UserID
	}
	return true
}

func (m *memCustomers) List(ctx context.Context, grant domain.Grant) ([]*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*domain.Customer{}
	for _, c := range m.rows {
		if m.visible(grant, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomers) GetByID(ctx context.Context, grant domain.Grant, id string) (*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.rows[id]
	if !ok || !m.visible(grant, c) {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (m *memCustomers) Create(ctx context.Context, grant domain.Grant, c *domain.Customer) error {
	if m.err != nil {
		return m.err
	}
	m.seq++
	c.ID = fmt.Sprintf("c-%d", m.seq)
	c.TenantID = grant.TenantID
	c.CreatedBy = grant.UserID
	c.CreatedAt = time.Now()
	m.rows[c.ID] = c
	return nil
}

func (m *memCustomers) Update(ctx context.Context, grant domain.Grant, id string, upd domain.CustomerUpdate) (*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.rows[id]
	if !ok || c.TenantID != grant.TenantID {
		return nil, domain.ErrNotFound
	}
	c.Name = upd.Name
	c.Email = upd.Email
	c.Phone = upd.Phone
	c.Company = upd.Company
	c.Status = upd.Status
	c.AssignedTo = upd.AssignedTo
	return c, nil
}

func (m *memCustomers) Delete(ctx context.Context, grant domain.Grant, id string) error {
	if m.err != nil {
		return m.err
	}
	c, ok := m.rows[id]
	if !ok || c.TenantID != grant.TenantID {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memCustomers) CountByTenant(ctx context.Context, grant domain.Grant) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, c := range m.rows {
		if c.TenantID == grant.TenantID {
			n++
		}
	}
	return n, nil
}

func (m *memCustomers) CountByStatus(ctx context.Context, grant domain.Grant) (map[domain.CustomerStatus]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := map[domain.CustomerStatus]int{}
	for _, status := range domain.CustomerStatuses {
		out[status] = 0
	}
	for _, c := range m.rows {
		if c.TenantID == grant.TenantID {
			out[c.Status]++
		}
	}
	return out, nil
}

func (m *memCustomers) TotalAcrossTenants(ctx context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.rows), nil
}

type memActivities struct {
	rows []*domain.Activity
	seq  int
	err  error
}

func newMemActivities() *memActivities {
	return &memActivities{}
}

func (m *memActivities) List(ctx context.Context, grant domain.Grant, customerID string) ([]*domain.Activity, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []*domain.Activity{}
	for _, a := range m.rows {
		if a.TenantID != grant.TenantID {
			continue
		}
		if customerID != "" && a.CustomerID != customerID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memActivities) Create(ctx context.Context, grant domain.Grant, a *domain.Activity) error {
	if m.err != nil {
		return m.err
	}
	m.seq++
	a.ID = fmt.Sprintf("a-%d", m.seq)
	a.TenantID = grant.TenantID
	a.UserID = grant.UserID
	a.CreatedAt = time.Now()
	m.rows = append(m.rows, a)
	return nil
}

func (m *memActivities) CountSince(ctx context.Context, grant domain.Grant, since time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, a := range m.rows {
		if a.TenantID == grant.TenantID && a.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]time.Duration{}}
}

func (f *fakeRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[jti] = ttl
	return nil
}

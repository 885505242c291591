package domain

import (
	"context"
	"time"
)

// Role is a user's role within one tenant. Roles are per-membership, not
// per-user: the same user may be admin in one tenant and support in another.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
	RoleSupport Role = "support"
)

// ValidRole reports whether s is one of the four defined roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleSales, RoleSupport:
		return true
	}
	return false
}

// Grant is the proof that a request's identity was resolved and its tenant
// membership verified. It is produced by the tenant middleware after the
// user_roles lookup succeeds, and every tenant-scoped repository method takes
// one: data access cannot be reached from a raw header value.
type Grant struct {
	TenantID string
	UserID   string
	Role     Role
}

// Tenant is an isolated customer organization. All business data is
// partitioned by tenant id.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantRepository defines data access for tenants
type TenantRepository interface {
	// CreateWithAdmin creates the tenant and its initial admin membership as
	// one atomic unit; neither row exists if either insert fails.
	CreateWithAdmin(ctx context.Context, tenant *Tenant, adminUserID string) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	Count(ctx context.Context) (int, error)
}

// Membership binds a user to a tenant with a role (the user_roles table).
type Membership struct {
	ID        string
	TenantID  string
	UserID    string
	Role      Role
	CreatedBy string
	CreatedAt time.Time
	Email     string // joined from auth_users for listings; not a column
}

// TenantAccess is one tenant a user can act in, as returned at login time so
// the client can populate its tenant switcher.
type TenantAccess struct {
	TenantID string `json:"tenant_id"`
	Role     Role   `json:"role"`
	Tenant   Tenant `json:"tenants"`
}

// MembershipRepository defines data access for tenant memberships
type MembershipRepository interface {
	// GetRole is the tenant authorizer's lookup; it runs before any Grant
	// exists and is keyed by the raw (user, tenant) pair.
	GetRole(ctx context.Context, userID, tenantID string) (Role, error)

	ListByTenant(ctx context.Context, grant Grant) ([]*Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*TenantAccess, error)
	Create(ctx context.Context, grant Grant, m *Membership) error
	UpdateRole(ctx context.Context, grant Grant, id string, role Role) (*Membership, error)
	Delete(ctx context.Context, grant Grant, id string) error
	CountByTenant(ctx context.Context, grant Grant) (int, error)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/tenantcrm/internal/domain"
)

// PostgresMembershipRepository implements domain.MembershipRepository using
// PostgreSQL. Except for GetRole and ListByUser, which run before or outside
// any tenant scope, every method filters by the grant's tenant id.
type PostgresMembershipRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresMembershipRepository creates a new membership repository
func NewPostgresMembershipRepository(db *sql.DB, logger *slog.Logger) *PostgresMembershipRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMembershipRepository{db: db, logger: logger}
}

// GetRole looks up the caller's role inside one tenant. This is the tenant
// authorizer's only query; a missing row is ErrForbidden, and a store error
// is ErrInternal, which the middleware collapses into the same 403.
func (r *PostgresMembershipRepository) GetRole(ctx context.Context, userID, tenantID string) (domain.Role, error) {
	var role string
	err := r.db.QueryRowContext(ctx, `
		SELECT role
		FROM user_roles
		WHERE user_id = $1 AND tenant_id = $2
	`, userID, tenantID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrForbidden
		}
		r.logger.Error("failed to look up membership",
			slog.String("user_id", userID),
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
		return "", domain.ErrInternal
	}
	return domain.Role(role), nil
}

// ListByTenant returns the tenant's memberships with member emails joined in
func (r *PostgresMembershipRepository) ListByTenant(ctx context.Context, grant domain.Grant) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ur.id, ur.tenant_id, ur.user_id, ur.role, ur.created_by, ur.created_at, au.email
		FROM user_roles ur
		JOIN auth_users au ON au.id = ur.user_id
		WHERE ur.tenant_id = $1
		ORDER BY ur.created_at DESC
	`, grant.TenantID)
	if err != nil {
		r.logger.Error("failed to list memberships",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	defer rows.Close()

	var out []*domain.Membership
	for rows.Next() {
		m := &domain.Membership{}
		if err := rows.Scan(&m.ID, &m.TenantID, &m.UserID, &m.Role, &m.CreatedBy, &m.CreatedAt, &m.Email); err != nil {
			r.logger.Error("failed to scan membership", slog.String("error", err.Error()))
			return nil, domain.ErrInternal
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrInternal
	}
	return out, nil
}

// ListByUser returns every tenant a user can act in, for the login response
func (r *PostgresMembershipRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TenantAccess, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ur.tenant_id, ur.role, t.id, t.name, t.domain, t.created_at
		FROM user_roles ur
		JOIN tenants t ON t.id = ur.tenant_id
		WHERE ur.user_id = $1
		ORDER BY ur.created_at DESC
	`, userID)
	if err != nil {
		r.logger.Error("failed to list user tenants",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	defer rows.Close()

	var out []*domain.TenantAccess
	for rows.Next() {
		ta := &domain.TenantAccess{}
		if err := rows.Scan(&ta.TenantID, &ta.Role, &ta.Tenant.ID, &ta.Tenant.Name, &ta.Tenant.Domain, &ta.Tenant.CreatedAt); err != nil {
			r.logger.Error("failed to scan tenant access", slog.String("error", err.Error()))
			return nil, domain.ErrInternal
		}
		out = append(out, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrInternal
	}
	return out, nil
}

// Create inserts a membership. Tenant and creator are stamped from the
// grant, never from m.
func (r *PostgresMembershipRepository) Create(ctx context.Context, grant domain.Grant, m *domain.Membership) error {
	m.ID = uuid.NewString()
	m.TenantID = grant.TenantID
	m.CreatedBy = grant.UserID

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_roles (id, tenant_id, user_id, role, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, m.ID, m.TenantID, m.UserID, m.Role, m.CreatedBy).Scan(&m.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create membership",
			slog.String("tenant_id", grant.TenantID),
			slog.String("user_id", m.UserID),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}
	return nil
}

// UpdateRole changes the role on a membership within the grant's tenant
func (r *PostgresMembershipRepository) UpdateRole(ctx context.Context, grant domain.Grant, id string, role domain.Role) (*domain.Membership, error) {
	m := &domain.Membership{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE user_roles
		SET role = $1
		WHERE id = $2 AND tenant_id = $3
		RETURNING id, tenant_id, user_id, role, created_by, created_at
	`, role, id, grant.TenantID).Scan(&m.ID, &m.TenantID, &m.UserID, &m.Role, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to update role",
			slog.String("membership_id", id),
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	return m, nil
}

// Delete removes a membership within the grant's tenant
func (r *PostgresMembershipRepository) Delete(ctx context.Context, grant domain.Grant, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM user_roles
		WHERE id = $1 AND tenant_id = $2
	`, id, grant.TenantID)
	if err != nil {
		r.logger.Error("failed to delete membership",
			slog.String("membership_id", id),
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.ErrInternal
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByTenant returns the tenant's team size
func (r *PostgresMembershipRepository) CountByTenant(ctx context.Context, grant domain.Grant) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_roles WHERE tenant_id = $1
	`, grant.TenantID).Scan(&n)
	if err != nil {
		r.logger.Error("failed to count memberships",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return 0, domain.ErrInternal
	}
	return n, nil
}

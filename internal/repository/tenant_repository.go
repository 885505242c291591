package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/tenantcrm/internal/domain"
)

// PostgresTenantRepository implements domain.TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTenantRepository creates a new tenant repository
func NewPostgresTenantRepository(db *sql.DB, logger *slog.Logger) *PostgresTenantRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTenantRepository{db: db, logger: logger}
}

// CreateWithAdmin creates the tenant and its initial admin membership inside
// one transaction. A signup must never leave a tenant with no admin behind,
// so a failed membership insert rolls the tenant back as well.
func (r *PostgresTenantRepository) CreateWithAdmin(ctx context.Context, tenant *domain.Tenant, adminUserID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("failed to begin signup transaction", slog.String("error", err.Error()))
		return domain.ErrInternal
	}
	defer tx.Rollback()

	tenant.ID = uuid.NewString()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tenants (id, name, domain)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, tenant.ID, tenant.Name, tenant.Domain).Scan(&tenant.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create tenant",
			slog.String("domain", tenant.Domain),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_roles (id, tenant_id, user_id, role, created_by)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), tenant.ID, adminUserID, domain.RoleAdmin, adminUserID)
	if err != nil {
		r.logger.Error("failed to create admin membership",
			slog.String("tenant_id", tenant.ID),
			slog.String("user_id", adminUserID),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit signup transaction", slog.String("error", err.Error()))
		return domain.ErrInternal
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, domain, created_at
		FROM tenants
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Domain, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get tenant", slog.String("id", id), slog.String("error", err.Error()))
		return nil, domain.ErrInternal
	}
	return t, nil
}

// Count returns the total number of tenants; used by the stats worker only.
func (r *PostgresTenantRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&n); err != nil {
		r.logger.Error("failed to count tenants", slog.String("error", err.Error()))
		return 0, domain.ErrInternal
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/tenantcrm/internal/domain"
)

// PostgresActivityRepository implements domain.ActivityRepository using
// PostgreSQL. Activities are append-only.
type PostgresActivityRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresActivityRepository creates a new activity repository
func NewPostgresActivityRepository(db *sql.DB, logger *slog.Logger) *PostgresActivityRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActivityRepository{db: db, logger: logger}
}

// List returns the tenant's activities, optionally narrowed to one customer,
// most recent first.
func (r *PostgresActivityRepository) List(ctx context.Context, grant domain.Grant, customerID string) ([]*domain.Activity, error) {
	query := `
		SELECT id, tenant_id, customer_id, user_id, type, subject, description, created_at
		FROM activities
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{grant.TenantID}
	if customerID != "" {
		query = `
			SELECT id, tenant_id, customer_id, user_id, type, subject, description, created_at
			FROM activities
			WHERE tenant_id = $1 AND customer_id = $2
			ORDER BY created_at DESC
		`
		args = append(args, customerID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list activities",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	defer rows.Close()

	var out []*domain.Activity
	for rows.Next() {
		a := &domain.Activity{}
		err := rows.Scan(&a.ID, &a.TenantID, &a.CustomerID, &a.UserID, &a.Type, &a.Subject, &a.Description, &a.CreatedAt)
		if err != nil {
			r.logger.Error("failed to scan activity", slog.String("error", err.Error()))
			return nil, domain.ErrInternal
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrInternal
	}
	return out, nil
}

// Create appends an activity. TenantID and UserID come from the grant; the
// referenced customer must already be in the same tenant, which the foreign
// key plus the stamped tenant id guarantee together.
func (r *PostgresActivityRepository) Create(ctx context.Context, grant domain.Grant, a *domain.Activity) error {
	a.ID = uuid.NewString()
	a.TenantID = grant.TenantID
	a.UserID = grant.UserID

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO activities (id, tenant_id, customer_id, user_id, type, subject, description)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (
			SELECT 1 FROM customers WHERE id = $3 AND tenant_id = $2
		)
		RETURNING created_at
	`, a.ID, a.TenantID, a.CustomerID, a.UserID, a.Type, a.Subject, a.Description).Scan(&a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// customer not in this tenant
			return domain.ErrNotFound
		}
		r.logger.Error("failed to create activity",
			slog.String("tenant_id", grant.TenantID),
			slog.String("customer_id", a.CustomerID),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}
	return nil
}

// CountSince returns how many activities the tenant logged after the given
// time; a single bounded range query.
func (r *PostgresActivityRepository) CountSince(ctx context.Context, grant domain.Grant, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM activities
		WHERE tenant_id = $1 AND created_at >= $2
	`, grant.TenantID, since).Scan(&n)
	if err != nil {
		r.logger.Error("failed to count recent activities",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return 0, domain.ErrInternal
	}
	return n, nil
}

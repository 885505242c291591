package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/tenantcrm/internal/domain"
)

// PostgresCustomerRepository implements domain.CustomerRepository using
// PostgreSQL. The tenant filter is applied here, at the call site of every
// query, never taken from a request payload. For the sales and support roles
// reads are additionally restricted to customers assigned to the caller.
type PostgresCustomerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCustomerRepository creates a new customer repository
func NewPostgresCustomerRepository(db *sql.DB, logger *slog.Logger) *PostgresCustomerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCustomerRepository{db: db, logger: logger}
}

// restrictedRead reports whether the grant's role only sees assigned rows
func restrictedRead(grant domain.Grant) bool {
	return grant.Role == domain.RoleSales || grant.Role == domain.RoleSupport
}

const customerColumns = `id, tenant_id, name, email, phone, company, status, COALESCE(assigned_to::text, ''), created_by, created_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Company,
		&c.Status, &c.AssignedTo, &c.CreatedBy, &c.CreatedAt,
	)
	return c, err
}

// List returns the tenant's customers, most recent first
func (r *PostgresCustomerRepository) List(ctx context.Context, grant domain.Grant) ([]*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{grant.TenantID}
	if restrictedRead(grant) {
		query = `
			SELECT ` + customerColumns + `
			FROM customers
			WHERE tenant_id = $1 AND assigned_to = $2
			ORDER BY created_at DESC
		`
		args = append(args, grant.UserID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list customers",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	defer rows.Close()

	var out []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.Error("failed to scan customer", slog.String("error", err.Error()))
			return nil, domain.ErrInternal
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrInternal
	}
	return out, nil
}

// GetByID retrieves one customer within the grant's scope
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, grant domain.Grant, id string) (*domain.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1 AND tenant_id = $2
	`
	args := []interface{}{id, grant.TenantID}
	if restrictedRead(grant) {
		query += ` AND assigned_to = $3`
		args = append(args, grant.UserID)
	}

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get customer",
			slog.String("id", id),
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	return c, nil
}

// Create inserts a customer. TenantID and CreatedBy are stamped from the
// grant; whatever the client put in those payload fields is discarded before
// this call.
func (r *PostgresCustomerRepository) Create(ctx context.Context, grant domain.Grant, c *domain.Customer) error {
	c.ID = uuid.NewString()
	c.TenantID = grant.TenantID
	c.CreatedBy = grant.UserID

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (id, tenant_id, name, email, phone, company, status, assigned_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::uuid, $9)
		RETURNING created_at
	`, c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Company, c.Status, c.AssignedTo, c.CreatedBy).Scan(&c.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create customer",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}
	return nil
}

// Update rewrites the client-settable fields of a customer within the
// grant's tenant and returns the updated row.
func (r *PostgresCustomerRepository) Update(ctx context.Context, grant domain.Grant, id string, upd domain.CustomerUpdate) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, company = $4, status = $5, assigned_to = NULLIF($6, '')::uuid
		WHERE id = $7 AND tenant_id = $8
		RETURNING `+customerColumns+`
	`, upd.Name, upd.Email, upd.Phone, upd.Company, upd.Status, upd.AssignedTo, id, grant.TenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to update customer",
			slog.String("id", id),
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	return c, nil
}

// Delete removes a customer within the grant's tenant
func (r *PostgresCustomerRepository) Delete(ctx context.Context, grant domain.Grant, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM customers
		WHERE id = $1 AND tenant_id = $2
	`, id, grant.TenantID)
	if err != nil {
		r.logger.Error("failed to delete customer",
			slog.String("id", id),
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

// CountByTenant returns the tenant's total customer count
func (r *PostgresCustomerRepository) CountByTenant(ctx context.Context, grant domain.Grant) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM customers WHERE tenant_id = $1
	`, grant.TenantID).Scan(&n)
	if err != nil {
		r.logger.Error("failed to count customers",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return 0, domain.ErrInternal
	}
	return n, nil
}

// CountByStatus returns the tenant's customer counts grouped by status.
// Every defined status is present in the result, zero-filled.
func (r *PostgresCustomerRepository) CountByStatus(ctx context.Context, grant domain.Grant) (map[domain.CustomerStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM customers
		WHERE tenant_id = $1
		GROUP BY status
	`, grant.TenantID)
	if err != nil {
		r.logger.Error("failed to count customers by status",
			slog.String("tenant_id", grant.TenantID),
			slog.String("error", err.Error()),
		)
		return nil, domain.ErrInternal
	}
	defer rows.Close()

	counts := make(map[domain.CustomerStatus]int, len(domain.CustomerStatuses))
	for _, s := range domain.CustomerStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrInternal
		}
		counts[domain.CustomerStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrInternal
	}
	return counts, nil
}

// TotalAcrossTenants is the stats worker's gauge query; request handling
// never calls it.
func (r *PostgresCustomerRepository) TotalAcrossTenants(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		r.logger.Error("failed to count all customers", slog.String("error", err.Error()))
		return 0, domain.ErrInternal
	}
	return n, nil
}

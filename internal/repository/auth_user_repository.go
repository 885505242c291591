package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/tenantcrm/internal/domain"
)

// PostgresAuthUserRepository implements domain.AuthUserRepository using
// PostgreSQL. This is the identity store; rows here carry no tenant scope.
type PostgresAuthUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAuthUserRepository creates a new identity account repository
func NewPostgresAuthUserRepository(db *sql.DB, logger *slog.Logger) *PostgresAuthUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuthUserRepository{db: db, logger: logger}
}

// Create creates a new identity account
func (r *PostgresAuthUserRepository) Create(ctx context.Context, user *domain.AuthUser) error {
	user.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO auth_users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create auth user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return domain.ErrInternal
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *PostgresAuthUserRepository) GetByID(ctx context.Context, id string) (*domain.AuthUser, error) {
	user := &domain.AuthUser{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM auth_users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("failed to get auth user", slog.String("id", id), slog.String("error", err.Error()))
		return nil, domain.ErrInternal
	}
	return user, nil
}

// GetByEmail retrieves an account by email
func (r *PostgresAuthUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AuthUser, error) {
	user := &domain.AuthUser{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM auth_users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrInternal
	}
	return user, nil
}

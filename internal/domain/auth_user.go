package domain

import (
	"context"
	"time"
)

// AuthUser is an account in the identity store. It carries no tenant
// affiliation; tenants are reached through memberships.
type AuthUser struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt, never serialized
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthUserRepository defines data access for identity accounts
type AuthUserRepository interface {
	Create(ctx context.Context, user *AuthUser) error
	GetByID(ctx context.Context, id string) (*AuthUser, error)
	GetByEmail(ctx context.Context, email string) (*AuthUser, error)
}

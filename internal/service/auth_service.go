package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
	"github.com/yourorg/tenantcrm/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// SessionRevoker marks issued sessions as logged out
type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService handles signup, login and logout against the identity store
type AuthService struct {
	users       domain.AuthUserRepository
	tenants     domain.TenantRepository
	memberships domain.MembershipRepository
	tokens      *auth.TokenManager
	sessions    SessionRevoker
	logger      *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users domain.AuthUserRepository,
	tenants domain.TenantRepository,
	memberships domain.MembershipRepository,
	tokens *auth.TokenManager,
	sessions SessionRevoker,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:       users,
		tenants:     tenants,
		memberships: memberships,
		tokens:      tokens,
		sessions:    sessions,
		logger:      logger,
	}
}

// UserInfo is the client-visible slice of an identity account
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an issued bearer credential
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResult is the signup/login response payload
type AuthResult struct {
	User    UserInfo               `json:"user"`
	Session Session                `json:"session"`
	Tenants []*domain.TenantAccess `json:"tenants"`
}

// Signup creates an identity account and, when tenant details are supplied,
// bootstraps the tenant with the new user as its admin. Tenant and admin
// membership are one atomic unit in the store: a half-created tenant with no
// admin cannot result.
func (s *AuthService) Signup(ctx context.Context, email, password, tenantName, tenantDomain string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrBadRequest)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrBadRequest)
	}
	if (tenantName == "") != (tenantDomain == "") {
		return nil, fmt.Errorf("%w: tenantName and tenantDomain must be given together", domain.ErrBadRequest)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, domain.ErrInternal
	}

	user := &domain.AuthUser{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if tenantName != "" {
		tenant := &domain.Tenant{Name: tenantName, Domain: tenantDomain}
		if err := s.tenants.CreateWithAdmin(ctx, tenant, user.ID); err != nil {
			return nil, err
		}
		s.logger.Info("tenant bootstrapped",
			slog.String("tenant_id", tenant.ID),
			slog.String("domain", tenant.Domain),
			slog.String("admin_user_id", user.ID),
		)
	}

	return s.issueSession(ctx, user)
}

// Login authenticates an account and returns a session plus every tenant the
// user can act in.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrBadRequest)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("login attempt with unknown email", slog.String("email", email))
			metrics.ObserveLogin("failed")
			// Same signal as a wrong password to prevent account enumeration
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("failed")
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.ObserveLogin("ok")
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return result, nil
}

// Logout revokes the presented session until its natural expiry
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return domain.ErrUnauthenticated
	}

	ttl := time.Duration(0)
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return domain.ErrInternal
	}

	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.AuthUser) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, domain.ErrInternal
	}

	tenants, err := s.memberships.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []*domain.TenantAccess{}
	}

	return &AuthResult{
		User: UserInfo{ID: user.ID, Email: user.Email},
		Session: Session{
			Token:     token,
			TokenType: "Bearer",
			ExpiresAt: time.Now().Add(s.tokens.TTL()),
		},
		Tenants: tenants,
	}, nil
}

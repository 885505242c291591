package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
	"github.com/yourorg/tenantcrm/internal/security"
	"github.com/yourorg/tenantcrm/internal/security/audit"
	"golang.org/x/crypto/bcrypt"
)

// MemberService manages tenant memberships. Every mutation is admin-only
// via the role policy.
type MemberService struct {
	memberships domain.MembershipRepository
	users       domain.AuthUserRepository
	audit       *audit.Logger
	logger      *slog.Logger
}

// NewMemberService creates a new membership service
func NewMemberService(memberships domain.MembershipRepository, users domain.AuthUserRepository, auditLog *audit.Logger, logger *slog.Logger) *MemberService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberService{memberships: memberships, users: users, audit: auditLog, logger: logger}
}

// List returns the tenant's memberships with member emails
func (s *MemberService) List(ctx context.Context, grant domain.Grant) ([]*domain.Membership, error) {
	if err := security.Require(grant, security.ResourceMembership, security.ActionRead); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceMembership), string(security.ActionRead))
		return nil, err
	}
	return s.memberships.ListByTenant(ctx, grant)
}

// Invite adds a user to the grant's tenant with the given role, creating the
// identity account first when the email is unknown. Invited accounts get an
// unguessable placeholder password.
// TODO: send the invite email with a password-reset link once the mailer lands.
func (s *MemberService) Invite(ctx context.Context, grant domain.Grant, email, role string) (*domain.Membership, error) {
	if err := security.Require(grant, security.ResourceMembership, security.ActionCreate); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceMembership), string(security.ActionCreate))
		s.audit.LogDenied(ctx, grant.TenantID, grant.UserID, "invite", "membership")
		return nil, err
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrBadRequest)
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrBadRequest, role)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if hashErr != nil {
			s.logger.Error("failed to hash placeholder password", slog.String("error", hashErr.Error()))
			return nil, domain.ErrInternal
		}
		user = &domain.AuthUser{Email: email, PasswordHash: string(hash)}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	m := &domain.Membership{UserID: user.ID, Role: domain.Role(role), Email: user.Email}
	if err := s.memberships.Create(ctx, grant, m); err != nil {
		return nil, err
	}

	s.audit.LogMembershipChange(ctx, grant.TenantID, grant.UserID, "invite", m.ID)
	return m, nil
}

// UpdateRole changes a member's role within the grant's tenant
func (s *MemberService) UpdateRole(ctx context.Context, grant domain.Grant, membershipID, role string) (*domain.Membership, error) {
	if err := security.Require(grant, security.ResourceMembership, security.ActionUpdate); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceMembership), string(security.ActionUpdate))
		s.audit.LogDenied(ctx, grant.TenantID, grant.UserID, "update_role", "membership")
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrBadRequest, role)
	}

	m, err := s.memberships.UpdateRole(ctx, grant, membershipID, domain.Role(role))
	if err != nil {
		return nil, err
	}

	s.audit.LogMembershipChange(ctx, grant.TenantID, grant.UserID, "update_role", membershipID)
	return m, nil
}

// Remove deletes a membership within the grant's tenant
func (s *MemberService) Remove(ctx context.Context, grant domain.Grant, membershipID string) error {
	if err := security.Require(grant, security.ResourceMembership, security.ActionDelete); err != nil {
		metrics.ObserveAuthzDenial(string(security.ResourceMembership), string(security.ActionDelete))
		s.audit.LogDenied(ctx, grant.TenantID, grant.UserID, "remove", "membership")
		return err
	}

	if err := s.memberships.Delete(ctx, grant, membershipID); err != nil {
		return err
	}

	s.audit.LogMembershipChange(ctx, grant.TenantID, grant.UserID, "remove", membershipID)
	return nil
}

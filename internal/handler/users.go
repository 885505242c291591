package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/service"
)

// UsersHandler handles the tenant membership endpoints; mutations are
// admin-only via the member service's policy checks.
type UsersHandler struct {
	members *service.MemberService
	logger  *slog.Logger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(members *service.MemberService, logger *slog.Logger) *UsersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsersHandler{members: members, logger: logger}
}

// InviteRequest represents the invite request body
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RoleRequest represents the role update request body
type RoleRequest struct {
	Role string `json:"role"`
}

// MemberResponse is one tenant member in API responses
type MemberResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toMemberResponse(m *domain.Membership) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Email:     m.Email,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

// List handles GET /api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	members, err := h.members.List(r.Context(), grant)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// Invite handles POST /api/users/invite
func (h *UsersHandler) Invite(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	var req InviteRequest
	if err := middleware.DecodeStrict(r.Body, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.members.Invite(r.Context(), grant, req.Email, req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberResponse(m))
}

// UpdateRole handles PUT /api/users/{id}/role
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	var req RoleRequest
	if err := middleware.DecodeStrict(r.Body, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.members.UpdateRole(r.Context(), grant, r.PathValue("id"), req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(m))
}

// Remove handles DELETE /api/users/{id}
func (h *UsersHandler) Remove(w http.ResponseWriter, r *http.Request) {
	grant, ok := middleware.GrantFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}

	if err := h.members.Remove(r.Context(), grant, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user removed successfully"})
}

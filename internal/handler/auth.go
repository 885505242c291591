package handler

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/security/ratelimit"
	"github.com/yourorg/tenantcrm/internal/service"
)

// AuthHandler handles the authentication endpoints. Signup and login run
// before any identity exists, so they carry their own per-IP rate limit.
type AuthHandler struct {
	authService *service.AuthService
	limiter     *ratelimit.Limiter
	authLimit   int
	authWindow  time.Duration
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, limiter *ratelimit.Limiter, authLimit int, authWindow time.Duration, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
		authLimit:   authLimit,
		authWindow:  authWindow,
		logger:      logger,
	}
}

// SignupRequest represents the signup request body. Tenant fields are
// optional; given together they bootstrap a tenant with this user as admin.
type SignupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	TenantName   string `json:"tenantName"`
	TenantDomain string `json:"tenantDomain"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}

	var req SignupRequest
	if err := middleware.DecodeStrict(r.Body, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.TenantName, req.TenantDomain)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("user signed up",
		slog.String("user_id", result.User.ID),
		slog.String("email", result.User.Email),
	)
	writeJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		return
	}

	var req LoginRequest
	if err := middleware.DecodeStrict(r.Body, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/auth/logout. It requires a valid session, which
// AuthMiddleware has already resolved.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, h.logger, domain.ErrUnauthenticated)
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h *AuthHandler) allow(r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.AllowStrict(clientIP(r), h.authLimit, h.authWindow)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

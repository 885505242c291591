package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/tenantcrm/internal/domain"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
	"github.com/yourorg/tenantcrm/internal/observability/tracing"
	"github.com/yourorg/tenantcrm/internal/security/auth"
	"github.com/yourorg/tenantcrm/internal/security/ratelimit"
)

// TenantHeader is the request header naming which tenant the caller wants to
// act in. It is a lookup key, not a trusted value: membership is re-verified
// against the store on every request.
const TenantHeader = "X-Tenant-Id"

type claimsContextKey struct{}
type grantContextKey struct{}

// SessionChecker reports whether a session token has been logged out.
type SessionChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// RoleLookup resolves a user's role within a tenant; it is the membership
// lookup behind the tenant authorizer.
type RoleLookup interface {
	GetRole(ctx context.Context, userID, tenantID string) (domain.Role, error)
}

// AuthMiddleware is the identity resolver: it validates the bearer credential
// and attaches the resolved claims to the request context. Any failure ends
// the request with 401 before a single data access runs.
func AuthMiddleware(tm *auth.TokenManager, sessions SessionChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token validation failed", slog.String("error", err.Error()))
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if sessions != nil && sessions.IsRevoked(r.Context(), claims.ID) {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantMiddleware is the tenant authorizer. It must run after
// AuthMiddleware: the caller-declared X-Tenant-Id header is only a lookup
// key, and the (user, tenant) membership row decides access. A missing
// membership and a failed lookup collapse into the same 403 so the response
// never reveals which tenants exist.
func TenantMiddleware(roles RoleLookup, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			tenantID := r.Header.Get(TenantHeader)
			if tenantID == "" {
				writeError(w, http.StatusBadRequest, "tenant ID required")
				return
			}

			role, err := roles.GetRole(r.Context(), claims.UserID, tenantID)
			if err != nil {
				log.Warn("tenant access denied",
					slog.String("user_id", claims.UserID),
					slog.String("tenant_id", tenantID),
					slog.String("error", err.Error()),
				)
				metrics.ObserveAuthzDenial("tenant", "authorize")
				writeError(w, http.StatusForbidden, "access denied to this tenant")
				return
			}

			grant := domain.Grant{TenantID: tenantID, UserID: claims.UserID, Role: role}
			tracing.TagTenant(r.Context(), grant.TenantID, string(grant.Role))
			ctx := context.WithValue(r.Context(), grantContextKey{}, grant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware limits authenticated traffic per user
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if claims := ClaimsFromContext(r.Context()); claims != nil {
				key = claims.UserID
			}

			if !limiter.Allow(key) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the resolved identity claims, or nil when the
// request never passed AuthMiddleware.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(claimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

// GrantFromContext returns the verified tenant grant. The second return is
// false when the request never passed TenantMiddleware; handlers must treat
// that as an authorization bug, not fall back to request headers.
func GrantFromContext(ctx context.Context) (domain.Grant, bool) {
	if g := ctx.Value(grantContextKey{}); g != nil {
		return g.(domain.Grant), true
	}
	return domain.Grant{}, false
}

// ContextWithGrant is a test seam for exercising handlers below the
// middleware chain.
func ContextWithGrant(ctx context.Context, grant domain.Grant) context.Context {
	return context.WithValue(ctx, grantContextKey{}, grant)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

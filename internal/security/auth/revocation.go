package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/tenantcrm/internal/infrastructure/redis"
)

// RevocationStore tracks logged-out sessions by jti. Entries expire with the
// token itself, so the set stays bounded without any sweeper.
type RevocationStore struct {
	redis  *redis.Client
	logger *slog.Logger
}

func NewRevocationStore(redisClient *redis.Client, logger *slog.Logger) *RevocationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevocationStore{redis: redisClient, logger: logger}
}

// Revoke marks a session token as logged out until it would have expired
// anyway. A ttl at or below zero means the token is already expired and
// there is nothing to record.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revocationKey(jti), "1", ttl); err != nil {
		s.logger.Error("failed to revoke session",
			slog.String("jti", jti),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// IsRevoked reports whether a jti has been logged out. A store error counts
// as revoked: the resolver must fail closed rather than accept a session it
// cannot check.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}
	exists, err := s.redis.Exists(ctx, revocationKey(jti))
	if err != nil {
		s.logger.Error("revocation check failed", slog.String("error", err.Error()))
		return true
	}
	return exists
}

func revocationKey(jti string) string {
	return "revoked:" + jti
}

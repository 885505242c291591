package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "tenantcrm-test", time.Hour)

	token, err := tm.GenerateToken("u-1", "alice@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti on every issued token")
	}
	if claims.Issuer != "tenantcrm-test" {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
}

func TestTokenJTIUniquePerIssuance(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Hour)

	t1, _ := tm.GenerateToken("u-1", "alice@example.com")
	t2, _ := tm.GenerateToken("u-1", "alice@example.com")

	c1, err := tm.ValidateToken(t1)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	c2, err := tm.ValidateToken(t2)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if c1.ID == c2.ID {
		t.Fatalf("two sessions shared a jti; per-session revocation impossible")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", "", time.Hour)
	other := NewTokenManager("secret-b", "", time.Hour)

	token, err := tm.GenerateToken("u-1", "alice@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected validation to fail with a different secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tm := &TokenManager{secret: "test-secret", issuer: "tenantcrm", ttl: -time.Minute}

	token, err := tm.GenerateToken("u-1", "alice@example.com")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := tm.ValidateToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestGenerateRequiresUserID(t *testing.T) {
	tm := NewTokenManager("test-secret", "", time.Hour)
	if _, err := tm.GenerateToken("", "alice@example.com"); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("unexpected token: %s", token)
	}

	for _, header := range []string{"", "abc123", "Basic abc123", "Bearer a b"} {
		if _, err := ExtractToken(header); err == nil {
			t.Errorf("expected error for header %q", header)
		}
	}
}

package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	claims := Claims{
		UserID:    "user-1",
		TenantID:  "tenant-1",
		RoleID:    "role-1",
		RoleName:  RoleManager,
		Clearance: 3,
	}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if parsed.UserID != claims.UserID || parsed.RoleName != claims.RoleName {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	if parsed.Clearance != 3 {
		t.Fatalf("expected clearance 3, got %d", parsed.Clearance)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Password123!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := CheckPassword(hash, "Password123!"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

package jwt

import (
	"errors"
	"testing"
	"time"

	"compliancehub/pkg/apperrors"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Generate(42, "alice", "11111111-2222-3333-4444-555555555555", "admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Subject != "alice" {
		t.Errorf("sub = %q, want alice", claims.Subject)
	}
	if claims.TenantID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("tenant_id = %q", claims.TenantID)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Generate(1, "bob", "tenant-uuid", "user")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Verify(token); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Errorf("expected token expired error, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	token, err := m.Generate(1, "bob", "tenant-uuid", "user")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := other.Verify(token); !errors.Is(err, apperrors.ErrTokenMalformed) {
		t.Errorf("expected malformed token error, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, apperrors.ErrTokenMalformed) {
			t.Errorf("Verify(%q): expected malformed token error, got %v", token, err)
		}
	}
}

package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"compliancehub/pkg/apperrors"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewRejectsBadKeyLength(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		if _, err := New(make([]byte, size)); err == nil {
			t.Errorf("New accepted %d-byte key", size)
		}
	}

	if _, err := New(testKey(t)); err != nil {
		t.Fatalf("New rejected 32-byte key: %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	env, err := New(testKey(t))
	if err != nil {
		t.Fatal(err)
	}

	payload := map[string]interface{}{
		"account_id": "123456789012",
		"public_ip":  "203.0.113.10",
		"nested":     map[string]interface{}{"region": "us-east-1"},
	}

	token, err := env.Encrypt(payload)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("token is not URL-safe: %q", token)
	}

	got, err := env.Decrypt(token)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got["account_id"] != "123456789012" || got["public_ip"] != "203.0.113.10" {
		t.Errorf("round trip lost data: %v", got)
	}
	nested, ok := got["nested"].(map[string]interface{})
	if !ok || nested["region"] != "us-east-1" {
		t.Errorf("nested map lost: %v", got["nested"])
	}
}

func TestEncryptProducesDistinctTokens(t *testing.T) {
	env, _ := New(testKey(t))
	payload := map[string]interface{}{"k": "v"}

	a, err := env.Encrypt(payload)
	if err != nil {
		t.Fatal(err)
	}
	b, err := env.Encrypt(payload)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same payload produced identical tokens")
	}
}

func TestDecryptTamperedToken(t *testing.T) {
	env, _ := New(testKey(t))
	token, err := env.Encrypt(map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0x01
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	if _, err := env.Decrypt(tampered); !errors.Is(err, apperrors.ErrTamper) {
		t.Errorf("expected tamper error, got %v", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	env, _ := New(testKey(t))

	for _, token := range []string{"", "!!!!", "c2hvcnQ"} {
		if _, err := env.Decrypt(token); !errors.Is(err, apperrors.ErrTamper) {
			t.Errorf("Decrypt(%q): expected tamper error, got %v", token, err)
		}
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	env, _ := New(testKey(t))
	token, err := env.Encrypt(map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}

	other := testKey(t)
	other[0] ^= 0xFF
	envOther, _ := New(other)

	if _, err := envOther.Decrypt(token); !errors.Is(err, apperrors.ErrTamper) {
		t.Errorf("expected tamper error with wrong key, got %v", err)
	}
}

func TestGenerateKey(t *testing.T) {
	encoded, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("key is not valid base64: %v", err)
	}
	if len(key) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(key))
	}
	if _, err := New(key); err != nil {
		t.Errorf("generated key rejected: %v", err)
	}
}

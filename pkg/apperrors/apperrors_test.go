package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrWrongTenant, http.StatusForbidden},
		{ErrRoleDenied, http.StatusForbidden},
		{ErrTenantInactive, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrTenantUnknown, http.StatusNotFound},
		{ErrSlugTaken, http.StatusConflict},
		{ErrUsernameTaken, http.StatusConflict},
		{Validation("bad input"), http.StatusUnprocessableEntity},
		{ErrKeyMissing, http.StatusInternalServerError},
		{ErrTamper, http.StatusInternalServerError},
		{ErrUpstreamTimeout, http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrTenantUnknown, cause)

	if !errors.Is(err, ErrTenantUnknown) {
		t.Error("wrapped error lost its identity")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("wrapped error matches an unrelated sentinel")
	}
}

func TestCryptoErrorsMaskDetails(t *testing.T) {
	// 加密错误面向客户端的消息不得泄露具体原因
	for _, err := range []*Error{ErrKeyMissing, ErrTamper} {
		if err.Message != "internal server error" {
			t.Errorf("%s: message %q leaks detail", err.Code, err.Message)
		}
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrRoleDenied)
	if e := AsAppError(wrapped); e == nil || e.Code != "ROLE_DENIED" {
		t.Errorf("AsAppError(wrapped) = %v", e)
	}

	if e := AsAppError(fmt.Errorf("plain error")); e != nil {
		t.Errorf("expected nil for non-app error, got %v", e)
	}
}

package services

import (
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	s := &TenantService{}

	valid := []string{"acme", "default_tenant", "tenant-42", "ab", "a1_b2-c3"}
	for _, slug := range valid {
		if !s.ValidateSlug(slug) {
			t.Errorf("ValidateSlug(%q) = false, want true", slug)
		}
	}

	invalid := []string{
		"",
		"a",
		"Acme",
		"has space",
		"emoji🙂",
		"dots.not.allowed",
		strings.Repeat("x", 51),
	}
	for _, slug := range invalid {
		if s.ValidateSlug(slug) {
			t.Errorf("ValidateSlug(%q) = true, want false", slug)
		}
	}
}

package common

import (
	"strings"
	"testing"
)

func TestRequired(t *testing.T) {
	if Required("name", "Alice") != nil {
		t.Fatal("non-empty string should pass")
	}
	if Required("name", "") == nil {
		t.Fatal("empty string should fail")
	}
	if Required("name", "   ") == nil {
		t.Fatal("whitespace-only string should fail")
	}
	if Required("name", nil) == nil {
		t.Fatal("nil should fail")
	}
	var p *string
	if Required("name", p) == nil {
		t.Fatal("nil string pointer should fail")
	}
}

func TestMaxLength(t *testing.T) {
	if MaxLength("title", "short", 10) != nil {
		t.Fatal("short string should pass")
	}
	if MaxLength("title", strings.Repeat("x", 11), 10) == nil {
		t.Fatal("long string should fail")
	}
	// multi-byte runes count as one character
	if MaxLength("title", "héllo", 5) != nil {
		t.Fatal("rune count should be used, not byte count")
	}
}

func TestUUIDRule(t *testing.T) {
	if UUID("id", "b2f1c9a0-7c3e-4f2a-9b1d-0e6f5a4c3d2b") != nil {
		t.Fatal("valid UUID should pass")
	}
	if UUID("id", "not-a-uuid") == nil {
		t.Fatal("invalid UUID should fail")
	}
	if UUID("id", 42) == nil {
		t.Fatal("non-string should fail")
	}
}

func TestSupportedExtension(t *testing.T) {
	for _, ok := range []string{".pdf", "pdf", ".DOCX", "docx"} {
		if SupportedExtension("ext", ok) != nil {
			t.Fatalf("%q should be supported", ok)
		}
	}
	for _, bad := range []string{".txt", "xlsx", ""} {
		if SupportedExtension("ext", bad) == nil {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator().
		Field("name", "", Required).
		Field("ext", ".txt", SupportedExtension)

	if !v.HasErrors() {
		t.Fatal("expected validation errors")
	}
	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(v.Errors()))
	}
	if err := v.Error(); err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("combined error should name the failing fields: %v", err)
	}

	clean := NewValidator().Field("name", "Alice", Required)
	if clean.Error() != nil {
		t.Fatalf("clean validator should produce nil error, got %v", clean.Error())
	}
}

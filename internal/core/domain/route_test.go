package domain

import (
	"fmt"
	"testing"
)

func TestRouteTable_RequiredRole(t *testing.T) {
	src := map[string]Role{RouteID("GET", "/auth/admin"): RoleAdmin}
	table := NewRouteTable(src)

	// later writes to the source must not leak into the table
	src[RouteID("GET", "/auth/profile")] = RoleUser

	if role, ok := table.RequiredRole("GET /auth/admin"); !ok || role != RoleAdmin {
		t.Fatalf("expected ADMIN requirement, got %q, %v", role, ok)
	}
	if _, ok := table.RequiredRole("GET /auth/profile"); ok {
		t.Fatalf("expected no requirement for profile")
	}
}

func TestIsDenial(t *testing.T) {
	denials := []error{ErrInvalidCredentials, ErrMissingToken, ErrInvalidToken, ErrExpiredToken, ErrInsufficientRole,
		fmt.Errorf("%w: wrapped", ErrInvalidToken)}
	for _, err := range denials {
		if !IsDenial(err) {
			t.Fatalf("expected %v to be a denial", err)
		}
	}
	for _, err := range []error{ErrInternalAuth, ErrDuplicateUsername, ErrTooManyAttempts, ErrMissingField, ErrPasswordTooLong, fmt.Errorf("boom")} {
		if IsDenial(err) {
			t.Fatalf("expected %v not to be a denial", err)
		}
	}
}

func TestDenialReason(t *testing.T) {
	if got := DenialReason(fmt.Errorf("%w: x", ErrExpiredToken)); got != "expired_token" {
		t.Fatalf("unexpected reason %q", got)
	}
	if got := DenialReason(ErrInsufficientRole); got != "insufficient_role" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleUser.Valid() {
		t.Fatalf("expected known roles to be valid")
	}
	if Role("admin").Valid() || Role("").Valid() {
		t.Fatalf("expected unknown roles to be invalid")
	}
}

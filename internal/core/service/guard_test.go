package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/infrastructure/crypto"
)

const (
	adminRoute = "GET /auth/admin"
	openRoute  = "GET /auth/profile"
)

func newTestGuard(t *testing.T) (*Guard, *stubPrincipalStore, *crypto.JWTCodec) {
	t.Helper()
	store := newStubPrincipalStore()
	codec := newTestCodec(t)
	routes := domain.NewRouteTable(map[string]domain.Role{
		domain.RouteID(http.MethodGet, "/auth/admin"): domain.RoleAdmin,
	})
	return NewGuard(codec, store, routes), store, codec
}

func seedPrincipal(t *testing.T, store *stubPrincipalStore, codec *crypto.JWTCodec, username string, role domain.Role) string {
	t.Helper()
	p, err := store.Create(context.Background(), &domain.Principal{Username: username, PasswordHash: "x", Role: role})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	token, err := codec.Sign(domain.Claims{Subject: p.ID, Username: p.Username}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestGuard_RoleRequirement(t *testing.T) {
	g, store, codec := newTestGuard(t)
	userToken := seedPrincipal(t, store, codec, "bob", domain.RoleUser)
	adminToken := seedPrincipal(t, store, codec, "root", domain.RoleAdmin)

	if _, err := g.Authorize(context.Background(), "Bearer "+userToken, adminRoute); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("expected ErrInsufficientRole, got %v", err)
	}

	p, err := g.Authorize(context.Background(), "Bearer "+adminToken, adminRoute)
	if err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if p.Username != "root" || p.Role != domain.RoleAdmin {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestGuard_FlatRoleEquality(t *testing.T) {
	store := newStubPrincipalStore()
	codec := newTestCodec(t)
	routes := domain.NewRouteTable(map[string]domain.Role{"GET /users-only": domain.RoleUser})
	g := NewGuard(codec, store, routes)

	adminToken := seedPrincipal(t, store, codec, "root", domain.RoleAdmin)
	if _, err := g.Authorize(context.Background(), "Bearer "+adminToken, "GET /users-only"); !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("expected ADMIN to be denied on USER route, got %v", err)
	}
}

func TestGuard_NoRequirementAllowsAnyPrincipal(t *testing.T) {
	g, store, codec := newTestGuard(t)
	userToken := seedPrincipal(t, store, codec, "bob", domain.RoleUser)
	adminToken := seedPrincipal(t, store, codec, "root", domain.RoleAdmin)

	for _, token := range []string{userToken, adminToken} {
		if _, err := g.Authorize(context.Background(), "Bearer "+token, openRoute); err != nil {
			t.Fatalf("expected access, got %v", err)
		}
	}
}

func TestGuard_MissingToken(t *testing.T) {
	g, _, _ := newTestGuard(t)

	for _, header := range []string{"", "Bearer", "Bearer ", "Token abc", "Basic dXNlcjpwYXNz", "Bearer a b"} {
		if _, err := g.Authorize(context.Background(), header, openRoute); !errors.Is(err, domain.ErrMissingToken) {
			t.Fatalf("header %q: expected ErrMissingToken, got %v", header, err)
		}
	}
}

func TestGuard_InvalidAndExpiredToken(t *testing.T) {
	g, store, codec := newTestGuard(t)
	seedPrincipal(t, store, codec, "bob", domain.RoleUser)

	if _, err := g.Authorize(context.Background(), "Bearer not-a-token", openRoute); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	expiredCodec, err := crypto.NewJWTCodec("secret", time.Hour, crypto.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	expired, err := expiredCodec.Sign(domain.Claims{Subject: "id-1", Username: "bob"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := g.Authorize(context.Background(), "Bearer "+expired, openRoute); !errors.Is(err, domain.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestGuard_UnknownPrincipalIsInvalidToken(t *testing.T) {
	g, _, codec := newTestGuard(t)

	token, err := codec.Sign(domain.Claims{Subject: "id-9", Username: "ghost"}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := g.Authorize(context.Background(), "Bearer "+token, openRoute); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGuard_StoreFaultIsNotDenial(t *testing.T) {
	g, store, codec := newTestGuard(t)
	token := seedPrincipal(t, store, codec, "bob", domain.RoleUser)
	store.findErr = errors.New("mongo down")

	_, err := g.Authorize(context.Background(), "Bearer "+token, openRoute)
	if err == nil || domain.IsDenial(err) {
		t.Fatalf("expected non-denial fault, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearerabc", "", false},
		{"", "", false},
		{"Basic abc", "", false},
	}
	for _, tc := range cases {
		token, ok := BearerToken(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Fatalf("BearerToken(%q) = %q, %v; want %q, %v", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

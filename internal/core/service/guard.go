package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
)

// Guard decides per request whether a bearer token grants access to a route.
type Guard struct {
	codec  ports.TokenCodec
	store  ports.PrincipalStore
	routes domain.RouteTable
}

func NewGuard(codec ports.TokenCodec, store ports.PrincipalStore, routes domain.RouteTable) *Guard {
	return &Guard{codec: codec, store: store, routes: routes}
}

// Authorize runs the request through token extraction, token verification,
// principal resolution and the route's role requirement, in that order, and
// stops at the first failure. Denials are reported with the domain error for
// the failed step; store faults are wrapped and are not denials.
func (g *Guard) Authorize(ctx context.Context, authorizationHeader, routeID string) (*domain.Principal, error) {
	token, ok := BearerToken(authorizationHeader)
	if !ok {
		return nil, domain.ErrMissingToken
	}

	claims, err := g.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	// Resolve by the signed username, never by anything the caller supplied.
	principal, err := g.store.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			return nil, fmt.Errorf("%w: principal %q no longer exists", domain.ErrInvalidToken, claims.Username)
		}
		return nil, fmt.Errorf("authorize: resolve principal: %w", err)
	}

	// Flat equality: ADMIN does not satisfy a USER requirement.
	if required, declared := g.routes.RequiredRole(routeID); declared && principal.Role != required {
		return nil, domain.ErrInsufficientRole
	}

	return principal, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

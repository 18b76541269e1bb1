package ports

import (
	"context"

	"github.com/autostack/access-service/internal/core/domain"
)

type AuthService interface {
	SignUp(ctx context.Context, username, password string, role domain.Role) (string, error)
	SignIn(ctx context.Context, username, password string) (string, error)
}

// Authorizer decides whether the bearer of authorizationHeader may access routeID.
type Authorizer interface {
	Authorize(ctx context.Context, authorizationHeader, routeID string) (*domain.Principal, error)
}

// LoginLimiter throttles repeated failed sign-ins for a username.
type LoginLimiter interface {
	Allow(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

package ports

import (
	"context"

	"github.com/autostack/access-service/internal/core/domain"
)

// PrincipalStore defines the persistence operations the auth core relies on.
// Lookups return domain.ErrPrincipalNotFound when no record matches; Create
// returns domain.ErrDuplicateUsername on a uniqueness violation.
type PrincipalStore interface {
	Create(ctx context.Context, principal *domain.Principal) (*domain.Principal, error)
	FindByID(ctx context.Context, id string) (*domain.Principal, error)
	FindByUsername(ctx context.Context, username string) (*domain.Principal, error)
}

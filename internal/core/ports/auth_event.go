package ports

import (
	"context"

	"github.com/autostack/access-service/internal/core/domain"
)

// AuthEventRecorder accepts audit events without blocking the caller.
type AuthEventRecorder interface {
	Record(event domain.AuthEvent)
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}

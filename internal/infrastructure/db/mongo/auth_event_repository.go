package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/autostack/access-service/internal/core/domain"
	"github.com/autostack/access-service/internal/core/ports"
)

const authEventCollection = "auth_events"

// AuthEventRepository implements ports.AuthEventRepository using MongoDB.
type AuthEventRepository struct {
	coll *mongo.Collection
}

// NewAuthEventRepository creates a new AuthEventRepository.
func NewAuthEventRepository(db *mongo.Database) ports.AuthEventRepository {
	return &AuthEventRepository{coll: db.Collection(authEventCollection)}
}

// InsertAuthEvent persists an audit record to the auth_events collection.
func (r *AuthEventRepository) InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, authEventDocument(event, time.Now().UTC()))
	return err
}

func authEventDocument(event *domain.AuthEvent, recordedAt time.Time) bson.M {
	doc := bson.M{
		"kind":        string(event.Kind),
		"username":    event.Username,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": recordedAt,
	}
	if event.Reason != "" {
		doc["reason"] = event.Reason
	}
	if event.RouteID != "" {
		doc["route_id"] = event.RouteID
	}
	return doc
}

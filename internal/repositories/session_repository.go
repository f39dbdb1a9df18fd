package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// SessionRepository defines the read-only interface over user sessions.
// Sessions are written by the auth service; this service only resolves
// device tokens from them.
type SessionRepository interface {
	FindSessions(ctx context.Context, userIDs []string, activeOnly bool) ([]models.UserSession, error)
	FindReachableSessions(ctx context.Context) ([]models.UserSession, error)
}

// MongoSessionRepository implements SessionRepository for MongoDB
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoSessionRepository
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{collection: db.Collection("user_sessions")}
}

// FindSessions retrieves the sessions of the given users
func (r *MongoSessionRepository) FindSessions(ctx context.Context, userIDs []string, activeOnly bool) ([]models.UserSession, error) {
	filter := bson.M{"userId": bson.M{"$in": userIDs}}
	if activeOnly {
		filter["status"] = models.SessionStatusActive
	}
	return r.findAll(ctx, filter)
}

// FindReachableSessions retrieves every active session that carries a device token
func (r *MongoSessionRepository) FindReachableSessions(ctx context.Context) ([]models.UserSession, error) {
	filter := bson.M{
		"status":   models.SessionStatusActive,
		"fcmToken": bson.M{"$exists": true, "$nin": bson.A{"", nil}},
	}
	return r.findAll(ctx, filter)
}

func (r *MongoSessionRepository) findAll(ctx context.Context, filter bson.M) ([]models.UserSession, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []models.UserSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session lifecycle states. Only active sessions are push targets.
const (
	SessionStatusActive   = "active"
	SessionStatusInactive = "inactive"
	SessionStatusExpired  = "expired"
)

// UserSession is one device session as written by the auth service.
// FCMToken may hold several comma-separated device tokens registered
// during the session's lifetime.
type UserSession struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	FCMToken  string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	Status    string             `json:"status" bson:"status"`
	UserAgent string             `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

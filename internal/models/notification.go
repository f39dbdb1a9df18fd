package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is the durable record of one logical notification event,
// stored once per (event, recipient) regardless of how many devices the
// push was delivered to.
type Notification struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReceiverID string             `json:"receiverId" bson:"receiverId"`
	SenderID   string             `json:"senderId,omitempty" bson:"senderId,omitempty"` // empty for system notifications
	SenderName string             `json:"senderName,omitempty" bson:"senderName,omitempty"`
	Type       string             `json:"type" bson:"type"` // like, comment, reply, follow, mention, admin-broadcast, ...
	Content    string             `json:"content" bson:"content"`
	PostID     string             `json:"postId,omitempty" bson:"postId,omitempty"`
	MediaURL   string             `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

package models

// Event payloads accepted from the HTTP API and the Kafka consumer. One
// explicit struct per event kind; required fields carry validator tags so
// malformed payloads are rejected at the transport boundary before the
// dispatcher runs.

// ReactionEvent covers actions on a post that notify the post owner:
// like, comment, share, and similar. Action names the reaction kind.
type ReactionEvent struct {
	PostOwnerID string `json:"userId" validate:"required"`
	Action      string `json:"action" validate:"required"`
	PostID      string `json:"postId" validate:"required"`
	ActorID     string `json:"fromUser" validate:"required"`
	ActorName   string `json:"username"`
	MediaURL    string `json:"mediaUrl"`
}

// ReplyEvent notifies a comment author that someone replied to their
// comment on a post.
type ReplyEvent struct {
	PostOwnerID     string `json:"postOwnerId" validate:"required"`
	Action          string `json:"action" validate:"required"`
	PostID          string `json:"postId" validate:"required"`
	ActorID         string `json:"userId" validate:"required"`
	ActorName       string `json:"username"`
	ParentCommentID string `json:"parentCommentId" validate:"required"`
	MediaURL        string `json:"mediaUrl"`
}

// MentionEvent notifies every tagged user of a post.
type MentionEvent struct {
	TaggedUserIDs []string `json:"taggedUserIds" validate:"required,min=1"`
	ActorID       string   `json:"userId" validate:"required"`
	ActorName     string   `json:"username"`
	PostID        string   `json:"postId" validate:"required"`
	PostURL       string   `json:"postUrl"`
}

// FollowEvent notifies the followed user. Request is true when the target
// account is private, turning the direct follow into a follow request.
type FollowEvent struct {
	TargetID  string `json:"targetId" validate:"required"`
	ActorID   string `json:"userId" validate:"required"`
	ActorName string `json:"username"`
	Request   bool   `json:"isPrivate"`
}

// FollowDecisionEvent notifies the requester after the account owner
// accepted or rejected their follow request.
type FollowDecisionEvent struct {
	RequesterID string `json:"requesterId" validate:"required"`
	ActorID     string `json:"userId" validate:"required"`
	ActorName   string `json:"username"`
	Accepted    bool   `json:"accepted"`
}

// WelcomeEvent greets a freshly registered user on their new device.
type WelcomeEvent struct {
	UserID   string `json:"userId" validate:"required"`
	UserName string `json:"userName"`
}

// BroadcastEvent is an admin notification for every reachable user.
type BroadcastEvent struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Priority string `json:"priority"`
	Sender   string `json:"sender"`
}

// DirectEvent is an admin notification targeted at a single user.
type DirectEvent struct {
	UserID   string `json:"userId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Priority string `json:"priority"`
	Sender   string `json:"sender"`
}

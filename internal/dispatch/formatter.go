package dispatch

import "fmt"

// Kind identifies one notification event kind. The set of constants below
// is what this service produces itself; Format accepts any string so
// callers may pass kinds this service has never seen.
type Kind string

const (
	KindLike           Kind = "like"
	KindComment        Kind = "comment"
	KindReply          Kind = "reply"
	KindFollow         Kind = "follow"
	KindFollowRequest  Kind = "follow-request"
	KindFollowAccepted Kind = "follow-accepted"
	KindFollowRejected Kind = "follow-rejected"
	KindUnfollow       Kind = "unfollow"
	KindShare          Kind = "share"
	KindMention        Kind = "mention"
	KindPost           Kind = "post"
	KindWelcome        Kind = "welcome"
	KindAdmin          Kind = "admin-broadcast"
)

// Message is a rendered push notification.
type Message struct {
	Title string
	Body  string
}

// Default message returned for kinds the formatter does not know.
const (
	DefaultTitle = "Notification"
	DefaultBody  = "You have a new notification."
)

// FallbackActorName substitutes a missing actor display name.
const FallbackActorName = "Someone"

// FormatContext carries the optional identifiers a message body may
// interpolate. Fields irrelevant to a kind are ignored.
type FormatContext struct {
	PostID          string
	ParentCommentID string
	PostURL         string
}

// Format maps an event kind and actor to a push title/body pair. It is a
// pure function and total: unknown kinds resolve to the default pair and
// a missing actor name resolves to a generic placeholder.
func Format(kind Kind, actorName string, fc FormatContext) Message {
	if actorName == "" {
		actorName = FallbackActorName
	}

	switch kind {
	case KindLike:
		return Message{Title: "New Like", Body: fmt.Sprintf("%s liked your post: %s", actorName, fc.PostID)}
	case KindComment:
		return Message{Title: "New Comment", Body: fmt.Sprintf("%s commented on your post: %s", actorName, fc.PostID)}
	case KindReply:
		return Message{Title: "New Reply", Body: fmt.Sprintf("%s replied to your comment: %s", actorName, fc.ParentCommentID)}
	case KindFollow:
		return Message{Title: "New Follower", Body: fmt.Sprintf("%s started following you", actorName)}
	case KindFollowRequest:
		return Message{Title: "New Follow Request", Body: fmt.Sprintf("%s requested to follow you", actorName)}
	case KindFollowAccepted:
		return Message{Title: "Accepted Request", Body: fmt.Sprintf("%s accepted your follow request", actorName)}
	case KindFollowRejected:
		return Message{Title: "Rejected Request", Body: fmt.Sprintf("%s rejected your follow request", actorName)}
	case KindUnfollow:
		return Message{Title: "Unfollowed", Body: fmt.Sprintf("%s unfollowed you", actorName)}
	case KindShare:
		return Message{Title: "New Share", Body: fmt.Sprintf("%s shared your post: %s", actorName, fc.PostID)}
	case KindMention:
		ref := fc.PostURL
		if ref == "" {
			ref = fc.PostID
		}
		return Message{Title: "You were mentioned!", Body: fmt.Sprintf("%s tagged you in a post (%s)", actorName, ref)}
	case KindPost:
		return Message{Title: "New Post", Body: fmt.Sprintf("%s posted something new", actorName)}
	case KindWelcome:
		return Message{Title: "Welcome!", Body: fmt.Sprintf("Welcome %s! Your account has been created.", actorName)}
	default:
		return Message{Title: DefaultTitle, Body: DefaultBody}
	}
}

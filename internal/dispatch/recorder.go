package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// NotificationStore persists notification records. Implemented by
// repositories.MongoNotificationRepository.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// contentLinkedKinds are the kinds whose records must reference the actor
// and the related post.
var contentLinkedKinds = map[Kind]struct{}{
	KindLike:    {},
	KindComment: {},
	KindReply:   {},
	KindShare:   {},
	KindMention: {},
}

// Recorder validates and persists one notification record per logical
// event. It is not idempotent; the dispatcher calls it exactly once per
// (event, recipient).
type Recorder struct {
	store NotificationStore
}

// NewRecorder creates a new Recorder.
func NewRecorder(store NotificationStore) *Recorder {
	return &Recorder{store: store}
}

// Record persists the notification. Validation failures wrap
// ErrInvalidInput and never reach the store; store failures wrap
// ErrSaveFailed with the underlying reason.
func (r *Recorder) Record(ctx context.Context, n *models.Notification) error {
	if err := validateRecord(n); err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := r.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}

func validateRecord(n *models.Notification) error {
	if n == nil {
		return fmt.Errorf("%w: nil notification", ErrInvalidInput)
	}
	if n.Type == "" || n.Content == "" || n.ReceiverID == "" {
		return fmt.Errorf("%w: type, content and receiverId are required", ErrInvalidInput)
	}
	if _, linked := contentLinkedKinds[Kind(n.Type)]; linked {
		if n.SenderID == "" || n.PostID == "" {
			return fmt.Errorf("%w: %s notifications require senderId and postId", ErrInvalidInput, n.Type)
		}
	}
	return nil
}

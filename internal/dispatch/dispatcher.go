package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// Observer is the injected observability sink for dispatch outcomes.
// internal/metrics provides the prometheus-backed implementation.
type Observer interface {
	DispatchHandled(kind string, success bool)
	DeliverySettled(succeeded, failed int)
}

type nopObserver struct{}

func (nopObserver) DispatchHandled(string, bool) {}
func (nopObserver) DeliverySettled(int, int)     {}

// Result is the uniform response of every dispatch operation. Success
// reflects whether the durable record was persisted; partial delivery
// failure alone never flips it.
type Result struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// recipientConcurrency bounds how many recipients a broadcast or mention
// processes at once.
const recipientConcurrency = 16

// Dispatcher composes resolver, formatter, fan-out and recorder into one
// handler per event kind.
type Dispatcher struct {
	resolver *TokenResolver
	fanout   *Fanout
	recorder *Recorder
	obs      Observer
}

// NewDispatcher creates a Dispatcher. obs may be nil.
func NewDispatcher(resolver *TokenResolver, fanout *Fanout, recorder *Recorder, obs Observer) *Dispatcher {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Dispatcher{resolver: resolver, fanout: fanout, recorder: recorder, obs: obs}
}

// NotifyReaction handles a reaction on a post (like, comment, share, ...)
// and notifies the post owner.
func (d *Dispatcher) NotifyReaction(ctx context.Context, ev models.ReactionEvent) Result {
	if ev.PostOwnerID == "" || ev.Action == "" || ev.ActorID == "" {
		return d.invalid(ev.Action, "missing recipient, action or actor")
	}

	kind := Kind(ev.Action)
	msg := Format(kind, ev.ActorName, FormatContext{PostID: ev.PostID})
	record := &models.Notification{
		ReceiverID: ev.PostOwnerID,
		SenderID:   ev.ActorID,
		SenderName: actorOrFallback(ev.ActorName),
		Type:       string(kind),
		Content:    msg.Body,
		PostID:     ev.PostID,
		MediaURL:   ev.MediaURL,
	}
	data := map[string]string{"type": string(kind), "postId": ev.PostID, "fromUser": ev.ActorID}
	return d.dispatchTo(ctx, kind, ev.PostOwnerID, msg, record, data)
}

// NotifyReply notifies a comment author about a reply to their comment.
func (d *Dispatcher) NotifyReply(ctx context.Context, ev models.ReplyEvent) Result {
	if ev.PostOwnerID == "" || ev.Action == "" || ev.ActorID == "" {
		return d.invalid(ev.Action, "missing recipient, action or actor")
	}

	kind := Kind(ev.Action)
	msg := Format(kind, ev.ActorName, FormatContext{PostID: ev.PostID, ParentCommentID: ev.ParentCommentID})
	record := &models.Notification{
		ReceiverID: ev.PostOwnerID,
		SenderID:   ev.ActorID,
		SenderName: actorOrFallback(ev.ActorName),
		Type:       string(kind),
		Content:    msg.Body,
		PostID:     ev.PostID,
		MediaURL:   ev.MediaURL,
	}
	data := map[string]string{"type": string(kind), "postId": ev.PostID, "fromUser": ev.ActorID}
	return d.dispatchTo(ctx, kind, ev.PostOwnerID, msg, record, data)
}

// NotifyMention notifies every tagged user. Unreachable tagged users only
// skip delivery; their record is still written. One user's failure never
// stops the others.
func (d *Dispatcher) NotifyMention(ctx context.Context, ev models.MentionEvent) Result {
	if len(ev.TaggedUserIDs) == 0 || ev.ActorID == "" {
		return d.invalid(string(KindMention), "missing tagged users or actor")
	}

	msg := Format(KindMention, ev.ActorName, FormatContext{PostID: ev.PostID, PostURL: ev.PostURL})
	resolved, err := d.resolver.Resolve(ctx, ev.TaggedUserIDs, true)
	if err != nil {
		log.Error().Err(err).Str("postId", ev.PostID).Msg("mention token resolution failed")
		resolved = map[string][]string{}
	}

	var failed int64
	var g errgroup.Group
	g.SetLimit(recipientConcurrency)
	for _, userID := range ev.TaggedUserIDs {
		userID := userID
		g.Go(func() error {
			record := &models.Notification{
				ReceiverID: userID,
				SenderID:   ev.ActorID,
				SenderName: actorOrFallback(ev.ActorName),
				Type:       string(KindMention),
				Content:    msg.Body,
				PostID:     ev.PostID,
				MediaURL:   ev.PostURL,
			}
			data := map[string]string{"type": string(KindMention), "postId": ev.PostID, "fromUser": ev.ActorID}
			res := d.dispatchResolved(ctx, KindMention, userID, resolved[userID], msg, record, data)
			if !res.Success {
				atomic.AddInt64(&failed, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := atomic.LoadInt64(&failed); n > 0 {
		return Result{Message: fmt.Sprintf("failed to record mention notifications for %d of %d users", n, len(ev.TaggedUserIDs)), Success: false}
	}
	return Result{Message: "mention notifications sent successfully", Success: true}
}

// NotifyFollow notifies the followed user. A follow of a private account
// is delivered and recorded as a follow request instead.
func (d *Dispatcher) NotifyFollow(ctx context.Context, ev models.FollowEvent) Result {
	if ev.TargetID == "" || ev.ActorID == "" {
		return d.invalid(string(KindFollow), "missing target or actor")
	}

	kind := KindFollow
	if ev.Request {
		kind = KindFollowRequest
	}
	msg := Format(kind, ev.ActorName, FormatContext{})
	record := &models.Notification{
		ReceiverID: ev.TargetID,
		SenderID:   ev.ActorID,
		SenderName: actorOrFallback(ev.ActorName),
		Type:       string(kind),
		Content:    msg.Body,
	}
	data := map[string]string{"type": string(kind), "fromUser": ev.ActorID}
	return d.dispatchTo(ctx, kind, ev.TargetID, msg, record, data)
}

// NotifyFollowDecision notifies the requester that their follow request
// was accepted or rejected.
func (d *Dispatcher) NotifyFollowDecision(ctx context.Context, ev models.FollowDecisionEvent) Result {
	if ev.RequesterID == "" || ev.ActorID == "" {
		return d.invalid(string(KindFollowAccepted), "missing requester or actor")
	}

	kind := KindFollowRejected
	if ev.Accepted {
		kind = KindFollowAccepted
	}
	msg := Format(kind, ev.ActorName, FormatContext{})
	record := &models.Notification{
		ReceiverID: ev.RequesterID,
		SenderID:   ev.ActorID,
		SenderName: actorOrFallback(ev.ActorName),
		Type:       string(kind),
		Content:    msg.Body,
	}
	data := map[string]string{"type": string(kind), "fromUser": ev.ActorID}
	return d.dispatchTo(ctx, kind, ev.RequesterID, msg, record, data)
}

// NotifyWelcome greets a freshly registered user.
func (d *Dispatcher) NotifyWelcome(ctx context.Context, ev models.WelcomeEvent) Result {
	if ev.UserID == "" {
		return d.invalid(string(KindWelcome), "missing user")
	}

	name := ev.UserName
	if name == "" {
		name = ev.UserID
	}
	msg := Format(KindWelcome, name, FormatContext{})
	record := &models.Notification{
		ReceiverID: ev.UserID,
		SenderName: "System",
		Type:       string(KindWelcome),
		Content:    msg.Body,
	}
	return d.dispatchTo(ctx, KindWelcome, ev.UserID, msg, record, map[string]string{"type": string(KindWelcome)})
}

// NotifyUser sends an admin-authored notification to one user.
func (d *Dispatcher) NotifyUser(ctx context.Context, ev models.DirectEvent) Result {
	if ev.UserID == "" || ev.Title == "" || ev.Body == "" {
		return d.invalid(string(KindAdmin), "missing user, title or body")
	}

	msg := Message{Title: ev.Title, Body: ev.Body}
	record := adminRecord(ev.UserID, msg)
	return d.dispatchTo(ctx, KindAdmin, ev.UserID, msg, record, map[string]string{"type": string(KindAdmin)})
}

// BroadcastGlobal sends an admin-authored notification to every user with
// at least one active session and token, processing recipients
// concurrently. One recipient's failure never stops the rest.
func (d *Dispatcher) BroadcastGlobal(ctx context.Context, ev models.BroadcastEvent) Result {
	if ev.Title == "" || ev.Body == "" {
		return d.invalid(string(KindAdmin), "missing title or body")
	}

	resolved, err := d.resolver.ResolveAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("broadcast recipient resolution failed")
		d.obs.DispatchHandled(string(KindAdmin), false)
		return Result{Message: "failed to resolve broadcast recipients", Success: false}
	}
	if len(resolved) == 0 {
		d.obs.DispatchHandled(string(KindAdmin), true)
		return Result{Message: "no reachable users for broadcast", Success: true}
	}

	msg := Message{Title: ev.Title, Body: ev.Body}
	data := map[string]string{"type": string(KindAdmin)}

	var failed int64
	var g errgroup.Group
	g.SetLimit(recipientConcurrency)
	for userID, tokens := range resolved {
		userID, tokens := userID, tokens
		g.Go(func() error {
			res := d.dispatchResolved(ctx, KindAdmin, userID, tokens, msg, adminRecord(userID, msg), data)
			if !res.Success {
				atomic.AddInt64(&failed, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := atomic.LoadInt64(&failed); n > 0 {
		return Result{Message: fmt.Sprintf("broadcast recorded for %d of %d users", int64(len(resolved))-n, len(resolved)), Success: false}
	}
	return Result{Message: fmt.Sprintf("broadcast sent to %d users", len(resolved)), Success: true}
}

// dispatchTo resolves one recipient's tokens and runs the shared
// deliver-then-record pipeline.
func (d *Dispatcher) dispatchTo(ctx context.Context, kind Kind, recipientID string, msg Message, record *models.Notification, data map[string]string) Result {
	var tokens []string
	resolved, err := d.resolver.Resolve(ctx, []string{recipientID}, true)
	if err != nil {
		// An unreadable session store makes the recipient unreachable;
		// the logical event is still recorded below.
		log.Error().Err(err).Str("userId", recipientID).Str("kind", string(kind)).Msg("token resolution failed")
	} else {
		tokens = resolved[recipientID]
	}
	return d.dispatchResolved(ctx, kind, recipientID, tokens, msg, record, data)
}

// dispatchResolved delivers to already-resolved tokens and writes the
// single durable record. Delivery is best-effort: a record is written
// even when every send failed or no tokens exist at all.
func (d *Dispatcher) dispatchResolved(ctx context.Context, kind Kind, recipientID string, tokens []string, msg Message, record *models.Notification, data map[string]string) Result {
	delivered := false
	if len(tokens) == 0 {
		log.Warn().Str("userId", recipientID).Str("kind", string(kind)).Msg("no active device tokens, skipping delivery")
	} else {
		res := d.fanout.Deliver(ctx, tokens, msg, data)
		d.obs.DeliverySettled(res.SuccessCount, len(res.Failures))
		delivered = res.SuccessCount > 0
		if len(res.Failures) > 0 {
			log.Warn().
				Str("userId", recipientID).
				Str("kind", string(kind)).
				Int("succeeded", res.SuccessCount).
				Int("failed", len(res.Failures)).
				Str("firstReason", res.Failures[0].Reason).
				Msg("delivery degraded")
		}
	}

	if err := d.recorder.Record(ctx, record); err != nil {
		log.Error().Err(err).Str("userId", recipientID).Str("kind", string(kind)).Msg("failed to record notification")
		d.obs.DispatchHandled(string(kind), false)
		return Result{Message: "failed to record notification", Success: false}
	}
	d.obs.DispatchHandled(string(kind), true)

	if len(tokens) == 0 {
		return Result{Message: "no active device tokens, notification recorded", Success: true}
	}
	if !delivered {
		return Result{Message: "delivery failed for all devices, notification recorded", Success: true}
	}
	return Result{Message: "notification sent successfully", Success: true}
}

func (d *Dispatcher) invalid(kind, reason string) Result {
	if kind == "" {
		kind = "unknown"
	}
	log.Warn().Str("kind", kind).Str("reason", reason).Msg("rejected notification event")
	d.obs.DispatchHandled(kind, false)
	return Result{Message: "invalid notification event: " + reason, Success: false}
}

func actorOrFallback(name string) string {
	if name == "" {
		return FallbackActorName
	}
	return name
}

func adminRecord(userID string, msg Message) *models.Notification {
	return &models.Notification{
		ReceiverID: userID,
		SenderName: "System",
		Type:       string(KindAdmin),
		Content:    msg.Body,
	}
}

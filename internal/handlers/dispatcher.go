package handlers

import (
	"context"

	"github.com/anonto42/nano-midea/notification/internal/dispatch"
	"github.com/anonto42/nano-midea/notification/internal/models"
)

// Dispatcher is the slice of the dispatch orchestrator the HTTP handlers
// need. *dispatch.Dispatcher satisfies it.
type Dispatcher interface {
	NotifyReaction(ctx context.Context, ev models.ReactionEvent) dispatch.Result
	NotifyReply(ctx context.Context, ev models.ReplyEvent) dispatch.Result
	NotifyMention(ctx context.Context, ev models.MentionEvent) dispatch.Result
	NotifyFollow(ctx context.Context, ev models.FollowEvent) dispatch.Result
	NotifyFollowDecision(ctx context.Context, ev models.FollowDecisionEvent) dispatch.Result
	NotifyWelcome(ctx context.Context, ev models.WelcomeEvent) dispatch.Result
	NotifyUser(ctx context.Context, ev models.DirectEvent) dispatch.Result
	BroadcastGlobal(ctx context.Context, ev models.BroadcastEvent) dispatch.Result
}

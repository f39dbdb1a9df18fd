package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/nano-midea/notification/internal/dispatch"
	"github.com/anonto42/nano-midea/notification/internal/models"
)

// Dispatcher is the slice of the dispatch orchestrator the consumer
// routes events to. *dispatch.Dispatcher satisfies it.
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

// Envelope is the JSON shape of one event on the notification topic:
// a kind discriminator plus the union of all per-kind payload fields.
type Envelope struct {
	Kind            string   `json:"kind"`
	UserID          string   `json:"userId"`
	TargetID        string   `json:"targetId"`
	RequesterID     string   `json:"requesterId"`
	PostOwnerID     string   `json:"postOwnerId"`
	Action          string   `json:"action"`
	PostID          string   `json:"postId"`
	PostURL         string   `json:"postUrl"`
	ParentCommentID string   `json:"parentCommentId"`
	FromUser        string   `json:"fromUser"`
	Username        string   `json:"username"`
	UserName        string   `json:"userName"`
	MediaURL        string   `json:"mediaUrl"`
	TaggedUserIDs   []string `json:"taggedUserIds"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	IsPrivate       bool     `json:"isPrivate"`
	Accepted        bool     `json:"accepted"`
}

// Consumer consumes decoded notification events from Kafka and routes
// them to the dispatcher. Delivery on this path is fire-and-forget:
// results are logged, never returned to the producer.
type Consumer struct {
	topic         string
	consumerGroup sarama.ConsumerGroup
	dispatcher    Dispatcher
}

// NewConsumer constructs a new Kafka Consumer. The consumer group is
// injected so the composition root owns its lifecycle.
func NewConsumer(topic string, consumerGroup sarama.ConsumerGroup, dispatcher Dispatcher) *Consumer {
	return &Consumer{
		topic:         topic,
		consumerGroup: consumerGroup,
		dispatcher:    dispatcher,
	}
}

// Start runs the consumer loop until the context is canceled or the
// consumer group is closed. Transient consume errors back off and retry.
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Str("topic", c.topic).Msg("Kafka consumer started")

	backoff := time.Second
	for {
		err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
		if err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return err
			}
			log.Error().Err(err).Msg("error consuming messages")

			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		if ctx.Err() != nil {
			log.Info().Msg("context canceled, stopping consumer")
			return ctx.Err()
		}
	}
}

// Setup is called once when a new consumer session starts.
func (c *Consumer) Setup(session sarama.ConsumerGroupSession) error {
	for topic, partitions := range session.Claims() {
		log.Info().Str("topic", topic).Ints32("partitions", partitions).Msg("partition assignment")
	}
	return nil
}

// Cleanup is called once when the consumer session ends.
func (c *Consumer) Cleanup(_ sarama.ConsumerGroupSession) error {
	log.Info().Msg("Kafka session cleanup complete")
	return nil
}

// ConsumeClaim processes the messages of one assigned partition. Every
// message is marked: a notification that cannot be handled is logged and
// dropped, never retried into a poison-pill loop.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		c.handleMessage(session.Context(), message.Value)
		session.MarkMessage(message, "")
	}
	return nil
}

// handleMessage decodes one envelope and routes it by kind.
func (c *Consumer) handleMessage(ctx context.Context, value []byte) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Error().Err(err).Msg("failed to decode event, skipping")
		return
	}

	res, err := c.route(ctx, env)
	if err != nil {
		log.Warn().Err(err).Str("kind", env.Kind).Msg("skipped event")
		return
	}
	if !res.Success {
		log.Error().Str("kind", env.Kind).Str("message", res.Message).Msg("event dispatch failed")
		return
	}
	log.Debug().Str("kind", env.Kind).Str("message", res.Message).Msg("event dispatched")
}

// route maps an envelope to the per-kind dispatch handler.
func (c *Consumer) route(ctx context.Context, env Envelope) (dispatch.Result, error) {
	switch env.Kind {
	case "reaction":
		return c.dispatcher.NotifyReaction(ctx, models.ReactionEvent{
			PostOwnerID: env.UserID,
			Action:      env.Action,
			PostID:      env.PostID,
			ActorID:     env.FromUser,
			ActorName:   env.Username,
			MediaURL:    env.MediaURL,
		}), nil
	case "reply":
		return c.dispatcher.NotifyReply(ctx, models.ReplyEvent{
			PostOwnerID:     env.PostOwnerID,
			Action:          string(dispatch.KindReply),
			PostID:          env.PostID,
			ActorID:         env.FromUser,
			ActorName:       env.Username,
			ParentCommentID: env.ParentCommentID,
			MediaURL:        env.MediaURL,
		}), nil
	case "mention":
		return c.dispatcher.NotifyMention(ctx, models.MentionEvent{
			TaggedUserIDs: env.TaggedUserIDs,
			ActorID:       env.FromUser,
			ActorName:     env.Username,
			PostID:        env.PostID,
			PostURL:       env.PostURL,
		}), nil
	case "follow":
		return c.dispatcher.NotifyFollow(ctx, models.FollowEvent{
			TargetID:  env.TargetID,
			ActorID:   env.FromUser,
			ActorName: env.Username,
			Request:   env.IsPrivate,
		}), nil
	case "follow-decision":
		return c.dispatcher.NotifyFollowDecision(ctx, models.FollowDecisionEvent{
			RequesterID: env.RequesterID,
			ActorID:     env.FromUser,
			ActorName:   env.Username,
			Accepted:    env.Accepted,
		}), nil
	case "welcome":
		return c.dispatcher.NotifyWelcome(ctx, models.WelcomeEvent{
			UserID:   env.UserID,
			UserName: env.UserName,
		}), nil
	case "broadcast":
		return c.dispatcher.BroadcastGlobal(ctx, models.BroadcastEvent{
			Title: env.Title,
			Body:  env.Body,
		}), nil
	case "direct":
		return c.dispatcher.NotifyUser(ctx, models.DirectEvent{
			UserID: env.UserID,
			Title:  env.Title,
			Body:   env.Body,
		}), nil
	default:
		return dispatch.Result{}, fmt.Errorf("unknown event kind %q", env.Kind)
	}
}

package dispatch

import (
	"context"
	"strings"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// SessionStore is the read-only view of the session store this service
// needs. Implemented by repositories.MongoSessionRepository.
type SessionStore interface {
	// FindSessions returns the sessions of the given users, restricted to
	// active sessions when activeOnly is set.
	FindSessions(ctx context.Context, userIDs []string, activeOnly bool) ([]models.UserSession, error)
	// FindReachableSessions returns every active session carrying at
	// least one device token. Used by admin broadcasts.
	FindReachableSessions(ctx context.Context) ([]models.UserSession, error)
}

// TokenResolver maps recipient identities to their device push tokens.
type TokenResolver struct {
	sessions SessionStore
}

// NewTokenResolver creates a new TokenResolver.
func NewTokenResolver(sessions SessionStore) *TokenResolver {
	return &TokenResolver{sessions: sessions}
}

// Resolve returns the device tokens per user ID, unioned across each
// user's sessions. A user with no matching session or no tokens maps to
// an empty slice; that is "nothing to deliver", not an error.
func (r *TokenResolver) Resolve(ctx context.Context, userIDs []string, activeOnly bool) (map[string][]string, error) {
	resolved := make(map[string][]string, len(userIDs))
	for _, id := range userIDs {
		resolved[id] = nil
	}
	if len(userIDs) == 0 {
		return resolved, nil
	}

	sessions, err := r.sessions.FindSessions(ctx, userIDs, activeOnly)
	if err != nil {
		return nil, err
	}

	for _, s := range sessions {
		resolved[s.UserID] = append(resolved[s.UserID], SplitTokens(s.FCMToken)...)
	}
	for id, tokens := range resolved {
		resolved[id] = dedupeTokens(tokens)
	}
	return resolved, nil
}

// ResolveAll returns the tokens of every user with at least one active
// session and a non-empty token set.
func (r *TokenResolver) ResolveAll(ctx context.Context) (map[string][]string, error) {
	sessions, err := r.sessions.FindReachableSessions(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string][]string)
	for _, s := range sessions {
		resolved[s.UserID] = append(resolved[s.UserID], SplitTokens(s.FCMToken)...)
	}
	for id, tokens := range resolved {
		tokens = dedupeTokens(tokens)
		if len(tokens) == 0 {
			delete(resolved, id)
			continue
		}
		resolved[id] = tokens
	}
	return resolved, nil
}

// SplitTokens splits a raw comma-delimited token field into its tokens,
// trimming whitespace and dropping empty entries. Input order is kept.
func SplitTokens(raw string) []string {
	if raw == "" {
		return nil
	}
	var tokens []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// dedupeTokens drops repeated tokens so a device is pushed at most once
// per event. First occurrence wins, order is kept.
func dedupeTokens(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

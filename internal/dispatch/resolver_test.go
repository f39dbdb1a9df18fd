package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

type stubSessionStore struct {
	sessions []models.UserSession
	err      error
}

func (s *stubSessionStore) FindSessions(_ context.Context, userIDs []string, activeOnly bool) ([]models.UserSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	var out []models.UserSession
	for _, sess := range s.sessions {
		if _, ok := wanted[sess.UserID]; !ok {
			continue
		}
		if activeOnly && sess.Status != models.SessionStatusActive {
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}

func (s *stubSessionStore) FindReachableSessions(context.Context) ([]models.UserSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.UserSession
	for _, sess := range s.sessions {
		if sess.Status == models.SessionStatusActive && sess.FCMToken != "" {
			out = append(out, sess)
		}
	}
	return out, nil
}

func TestSplitTokens(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty field", raw: "", want: nil},
		{name: "single token", raw: "t1", want: []string{"t1"}},
		{name: "trims whitespace", raw: " t1 , t2 ", want: []string{"t1", "t2"}},
		{name: "drops empty entries", raw: "t1,,t2,", want: []string{"t1", "t2"}},
		{name: "keeps input order", raw: "t3,t1,t2", want: []string{"t3", "t1", "t2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SplitTokens(tt.raw))
		})
	}
}

func TestResolverFiltersInactiveSessions(t *testing.T) {
	store := &stubSessionStore{sessions: []models.UserSession{
		{UserID: "bob", Status: models.SessionStatusActive, FCMToken: "t1,t2"},
		{UserID: "bob", Status: models.SessionStatusExpired, FCMToken: "t3"},
	}}
	r := NewTokenResolver(store)

	resolved, err := r.Resolve(context.Background(), []string{"bob"}, true)
	require.NoError(t, err)
	require.Equal(t, []string{"t1", "t2"}, resolved["bob"])
}

func TestResolverUnionsSessionsPerUser(t *testing.T) {
	store := &stubSessionStore{sessions: []models.UserSession{
		{UserID: "bob", Status: models.SessionStatusActive, FCMToken: "t1"},
		{UserID: "bob", Status: models.SessionStatusActive, FCMToken: "t2, t1"},
	}}
	r := NewTokenResolver(store)

	resolved, err := r.Resolve(context.Background(), []string{"bob"}, true)
	require.NoError(t, err)
	// duplicate t1 collapsed, first occurrence order kept
	require.Equal(t, []string{"t1", "t2"}, resolved["bob"])
}

func TestResolverUnknownUserIsEmptyNotError(t *testing.T) {
	r := NewTokenResolver(&stubSessionStore{})

	resolved, err := r.Resolve(context.Background(), []string{"ghost"}, true)
	require.NoError(t, err)
	require.Contains(t, resolved, "ghost")
	require.Empty(t, resolved["ghost"])
}

func TestResolverBatch(t *testing.T) {
	store := &stubSessionStore{sessions: []models.UserSession{
		{UserID: "a", Status: models.SessionStatusActive, FCMToken: "ta"},
		{UserID: "b", Status: models.SessionStatusActive, FCMToken: ""},
	}}
	r := NewTokenResolver(store)

	resolved, err := r.Resolve(context.Background(), []string{"a", "b", "c"}, true)
	require.NoError(t, err)
	require.Equal(t, []string{"ta"}, resolved["a"])
	require.Empty(t, resolved["b"])
	require.Empty(t, resolved["c"])
}

func TestResolveAllSkipsTokenlessUsers(t *testing.T) {
	store := &stubSessionStore{sessions: []models.UserSession{
		{UserID: "a", Status: models.SessionStatusActive, FCMToken: "ta1,ta2"},
		{UserID: "b", Status: models.SessionStatusActive, FCMToken: " , "},
		{UserID: "c", Status: models.SessionStatusInactive, FCMToken: "tc"},
	}}
	r := NewTokenResolver(store)

	resolved, err := r.ResolveAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string][]string{"a": {"ta1", "ta2"}}, resolved)
}

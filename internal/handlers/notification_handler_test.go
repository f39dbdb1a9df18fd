package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/nano-midea/notification/internal/dispatch"
	"github.com/anonto42/nano-midea/notification/internal/handlers"
	"github.com/anonto42/nano-midea/notification/internal/models"
	"github.com/anonto42/nano-midea/notification/internal/validators"
)

// fakeDispatcher returns a canned result and remembers the last event.
type fakeDispatcher struct {
	result    dispatch.Result
	reaction  *models.ReactionEvent
	reply     *models.ReplyEvent
	mention   *models.MentionEvent
	follow    *models.FollowEvent
	decision  *models.FollowDecisionEvent
	welcome   *models.WelcomeEvent
	direct    *models.DirectEvent
	broadcast *models.BroadcastEvent
}

func (f *fakeDispatcher) NotifyReaction(_ context.Context, ev models.ReactionEvent) dispatch.Result {
	f.reaction = &ev
	return f.result
}

func (f *fakeDispatcher) NotifyReply(_ context.Context, ev models.ReplyEvent) dispatch.Result {
	f.reply = &ev
	return f.result
}

func (f *fakeDispatcher) NotifyMention(_ context.Context, ev models.MentionEvent) dispatch.Result {
	f.mention = &ev
	return f.result
}

func (f *fakeDispatcher) NotifyFollow(_ context.Context, ev models.FollowEvent) dispatch.Result {
	f.follow = &ev
	return f.result
}

func (f *fakeDispatcher) NotifyFollowDecision(_ context.Context, ev models.FollowDecisionEvent) dispatch.Result {
	f.decision = &ev
	return f.result
}

func (f *fakeDispatcher) NotifyWelcome(_ context.Context, ev models.WelcomeEvent) dispatch.Result {
	f.welcome = &ev
	return f.result
}

func (f *fakeDispatcher) NotifyUser(_ context.Context, ev models.DirectEvent) dispatch.Result {
	f.direct = &ev
	return f.result
}

func (f *fakeDispatcher) BroadcastGlobal(_ context.Context, ev models.BroadcastEvent) dispatch.Result {
	f.broadcast = &ev
	return f.result
}

// fakeNotificationRepo serves canned pages for the read API.
type fakeNotificationRepo struct {
	notifications []models.Notification
	total         int64
	lastSkip      int64
	lastLimit     int64
	err           error
}

func (f *fakeNotificationRepo) Insert(_ context.Context, _ *models.Notification) error {
	return nil
}

func (f *fakeNotificationRepo) GetByReceiverID(_ context.Context, _ string, skip, limit int64) ([]models.Notification, int64, error) {
	f.lastSkip, f.lastLimit = skip, limit
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.notifications, f.total, nil
}

func newTestServer(fd *fakeDispatcher, repo *fakeNotificationRepo) *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()

	handlers.NewNotificationHandler(fd, repo).RegisterNotificationRoutes(e.Group("/notification"))
	handlers.NewUserNotifyHandler(fd).RegisterUserNotifyRoutes(e.Group("/notify"))
	handlers.NewPostNotifyHandler(fd).RegisterPostNotifyRoutes(e.Group("/notify"))
	handlers.NewAdminNotifyHandler(fd).RegisterAdminNotifyRoutes(e.Group("/admin"))
	e.GET("/health", handlers.HealthCheck)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSendNotification(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Message: "notification sent successfully", Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notification/send",
		`{"userId":"bob","action":"like","postId":"p1","fromUser":"alice","username":"alice"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var res dispatch.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.Success)
	require.Equal(t, "notification sent successfully", res.Message)

	require.NotNil(t, fd.reaction)
	require.Equal(t, "bob", fd.reaction.PostOwnerID)
	require.Equal(t, "alice", fd.reaction.ActorID)
}

func TestSendNotificationMissingFieldIsRejected(t *testing.T) {
	fd := &fakeDispatcher{}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notification/send",
		`{"action":"like","postId":"p1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, fd.reaction, "invalid payload must not reach the dispatcher")
}

func TestSendNotificationDispatchFailureIs500(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Message: "failed to record notification", Success: false}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notification/send",
		`{"userId":"bob","action":"like","postId":"p1","fromUser":"alice"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var res dispatch.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.False(t, res.Success)
}

func TestSendReplyNotification(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notification/send/reply",
		`{"postOwnerId":"bob","action":"reply","postId":"p1","userId":"carol","parentCommentId":"c9"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.reply)
	require.Equal(t, "c9", fd.reply.ParentCommentID)
}

func TestGetNotificationsRequiresUserID(t *testing.T) {
	e := newTestServer(&fakeDispatcher{}, &fakeNotificationRepo{})

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNotificationsPaginates(t *testing.T) {
	repo := &fakeNotificationRepo{
		notifications: []models.Notification{{ReceiverID: "bob", Type: "like", Content: "alice liked your post: p1"}},
		total:         45,
	}
	e := newTestServer(&fakeDispatcher{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/notification?userId=bob&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(10), repo.lastSkip)
	require.Equal(t, int64(10), repo.lastLimit)

	var body struct {
		Success bool `json:"success"`
		Meta    struct {
			CurrentPage     int   `json:"currentPage"`
			TotalPages      int   `json:"totalPages"`
			TotalItems      int64 `json:"totalItems"`
			HasNextPage     bool  `json:"hasNextPage"`
			HasPreviousPage bool  `json:"hasPreviousPage"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 2, body.Meta.CurrentPage)
	require.Equal(t, 5, body.Meta.TotalPages)
	require.Equal(t, int64(45), body.Meta.TotalItems)
	require.True(t, body.Meta.HasNextPage)
	require.True(t, body.Meta.HasPreviousPage)
}

func TestGetNotificationsClampsPagination(t *testing.T) {
	repo := &fakeNotificationRepo{}
	e := newTestServer(&fakeDispatcher{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/notification?userId=bob&page=0&limit=999", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(0), repo.lastSkip)
	require.Equal(t, int64(20), repo.lastLimit)
}

func TestWelcomeRoute(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notify/user/create", `{"userId":"u1","userName":"alice"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.welcome)
	require.Equal(t, "u1", fd.welcome.UserID)
}

func TestFollowRouteCarriesPrivacyFlag(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notify/user/follow",
		`{"targetId":"bob","userId":"carol","username":"carol","isPrivate":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.follow)
	require.True(t, fd.follow.Request)
}

func TestFollowDecisionRoute(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notify/user/follow/decision",
		`{"requesterId":"carol","userId":"dave","accepted":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.decision)
	require.True(t, fd.decision.Accepted)
}

func TestMentionRoute(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notify/post/mention",
		`{"taggedUserIds":["a","b"],"userId":"erin","postId":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.mention)
	require.Equal(t, []string{"a", "b"}, fd.mention.TaggedUserIDs)
}

func TestMentionRouteRejectsEmptyTagList(t *testing.T) {
	fd := &fakeDispatcher{}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/notify/post/mention",
		`{"taggedUserIds":[],"userId":"erin","postId":"p1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Nil(t, fd.mention)
}

func TestAdminRoutes(t *testing.T) {
	fd := &fakeDispatcher{result: dispatch.Result{Success: true}}
	e := newTestServer(fd, &fakeNotificationRepo{})

	rec := doJSON(e, http.MethodPost, "/admin/notification/global",
		`{"title":"Update","body":"v2 is live"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.broadcast)

	rec = doJSON(e, http.MethodPost, "/admin/notification/user",
		`{"userId":"u1","title":"Heads up","body":"maintenance tonight"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fd.direct)
	require.Equal(t, "u1", fd.direct.UserID)
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(&fakeDispatcher{}, &fakeNotificationRepo{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

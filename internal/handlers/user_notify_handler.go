package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// UserNotifyHandler handles user-lifecycle notification requests
// (registration, follows, follow decisions)
type UserNotifyHandler struct {
	dispatcher Dispatcher
}

// NewUserNotifyHandler creates a new UserNotifyHandler
func NewUserNotifyHandler(dispatcher Dispatcher) *UserNotifyHandler {
	return &UserNotifyHandler{dispatcher: dispatcher}
}

// RegisterUserNotifyRoutes registers user notification routes
func (h *UserNotifyHandler) RegisterUserNotifyRoutes(g *echo.Group) {
	g.POST("/user/create", h.CreateUser)
	g.POST("/user/follow", h.Follow)
	g.POST("/user/follow/decision", h.FollowDecision)
}

// CreateUser sends a welcome notification to a freshly registered user
func (h *UserNotifyHandler) CreateUser(c echo.Context) error {
	var ev models.WelcomeEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyWelcome(c.Request().Context(), ev)
	return respond(c, res)
}

// Follow notifies the followed user of a new follower or, for private
// accounts, of a pending follow request
func (h *UserNotifyHandler) Follow(c echo.Context) error {
	var ev models.FollowEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyFollow(c.Request().Context(), ev)
	return respond(c, res)
}

// FollowDecision notifies the requester that their follow request was
// accepted or rejected
func (h *UserNotifyHandler) FollowDecision(c echo.Context) error {
	var ev models.FollowDecisionEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyFollowDecision(c.Request().Context(), ev)
	return respond(c, res)
}

package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/notification/internal/dispatch"
	"github.com/anonto42/nano-midea/notification/internal/models"
	"github.com/anonto42/nano-midea/notification/internal/repositories"
)

// NotificationHandler handles post-interaction dispatch requests and the
// notification read API
type NotificationHandler struct {
	dispatcher             Dispatcher
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(dispatcher Dispatcher, notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		dispatcher:             dispatcher,
		notificationRepository: notifRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.POST("/send", h.SendNotification)
	g.POST("/send/reply", h.SendReplyNotification)
	g.GET("", h.GetNotifications)
}

// SendNotification dispatches a reaction notification (like, comment, share)
// to the post owner
func (h *NotificationHandler) SendNotification(c echo.Context) error {
	var ev models.ReactionEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyReaction(c.Request().Context(), ev)
	return respond(c, res)
}

// SendReplyNotification dispatches a reply notification to the parent
// comment's author
func (h *NotificationHandler) SendReplyNotification(c echo.Context) error {
	var ev models.ReplyEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyReply(c.Request().Context(), ev)
	return respond(c, res)
}

// GetNotifications returns a user's recorded notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId query parameter is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	skip := int64((page - 1) * limit)
	notifications, total, err := h.notificationRepository.GetByReceiverID(c.Request().Context(), userID, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Notifications fetched successfully",
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// respond maps a dispatch result to the uniform HTTP response. Success
// tracks record persistence only; delivery degradation never fails the
// request.
func respond(c echo.Context, res dispatch.Result) error {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, res)
}

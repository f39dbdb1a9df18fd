package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// AdminNotifyHandler handles admin-authored notification requests
type AdminNotifyHandler struct {
	dispatcher Dispatcher
}

// NewAdminNotifyHandler creates a new AdminNotifyHandler
func NewAdminNotifyHandler(dispatcher Dispatcher) *AdminNotifyHandler {
	return &AdminNotifyHandler{dispatcher: dispatcher}
}

// RegisterAdminNotifyRoutes registers admin notification routes
func (h *AdminNotifyHandler) RegisterAdminNotifyRoutes(g *echo.Group) {
	g.POST("/notification/global", h.SendGlobalNotification)
	g.POST("/notification/user", h.SendUserNotification)
}

// SendGlobalNotification broadcasts an admin notification to every
// reachable user
func (h *AdminNotifyHandler) SendGlobalNotification(c echo.Context) error {
	var ev models.BroadcastEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.BroadcastGlobal(c.Request().Context(), ev)
	return respond(c, res)
}

// SendUserNotification sends an admin notification to a single user
func (h *AdminNotifyHandler) SendUserNotification(c echo.Context) error {
	var ev models.DirectEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyUser(c.Request().Context(), ev)
	return respond(c, res)
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/nano-midea/notification/internal/models"
)

// PostNotifyHandler handles post-related notification requests beyond
// plain reactions
type PostNotifyHandler struct {
	dispatcher Dispatcher
}

// NewPostNotifyHandler creates a new PostNotifyHandler
func NewPostNotifyHandler(dispatcher Dispatcher) *PostNotifyHandler {
	return &PostNotifyHandler{dispatcher: dispatcher}
}

// RegisterPostNotifyRoutes registers post notification routes
func (h *PostNotifyHandler) RegisterPostNotifyRoutes(g *echo.Group) {
	g.POST("/post/mention", h.Mention)
}

// Mention notifies every user tagged in a post
func (h *PostNotifyHandler) Mention(c echo.Context) error {
	var ev models.MentionEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&ev); err != nil {
		return err
	}

	res := h.dispatcher.NotifyMention(c.Request().Context(), ev)
	return respond(c, res)
}

package http

import (
	"golang-stock-circle/internal/community/delivery/ws"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WebSocketHandler upgrades authenticated requests onto the notification hub.
type WebSocketHandler struct {
	hub    *ws.Hub
	logger *logger.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Connect godoc
// @Summary Live notifications
// @Description Upgrades to a websocket that receives events addressed to the caller. Browsers pass the session as ?token=.
// @Tags notifications
// @Param   token  query    string false    "Session token"
// @Success 101
// @Failure 401 {object} dto.ErrorResponse
// @Router /ws [get]
func (h *WebSocketHandler) Connect(c echo.Context) error {
	userID := currentUserID(c)
	if err := h.hub.Serve(c.Response(), c.Request(), userID); err != nil {
		h.logger.Warn("Websocket upgrade failed", logger.ErrorField(err), logger.UintField("user_id", userID))
	}
	return nil
}

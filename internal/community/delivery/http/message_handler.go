package http

import (
	"net/http"
	"strconv"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MessageHandler serves direct messages between mutual followers.
type MessageHandler struct {
	messagingService service.MessagingService
	logger           *logger.Logger
}

func NewMessageHandler(messagingService service.MessagingService, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{messagingService: messagingService, logger: logger}
}

// RegisterRoutes registers /messages. Every route requires a session.
func (h *MessageHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Send)
	g.GET("/unread", h.UnreadCount)
	g.GET("/can-message/:userId", h.CanMessage)
	g.GET("/:userId", h.Conversation)
	g.POST("/:userId/read", h.MarkRead)
}

// Send godoc
// @Summary Send a direct message
// @Description Sender and receiver must follow each other.
// @Tags messages
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.SendMessageRequest   true    "Message"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	var req dto.SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	msg, err := h.messagingService.Send(c.Request().Context(), currentUserID(c), req.ReceiverID, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// UnreadCount godoc
// @Summary Unread message count
// @Tags messages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.UnreadCountResponse
// @Router /messages/unread [get]
func (h *MessageHandler) UnreadCount(c echo.Context) error {
	resp, err := h.messagingService.UnreadCount(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// CanMessage godoc
// @Summary Whether the caller and a user follow each other
// @Tags messages
// @Produce  json
// @Security BearerAuth
// @Param   userId  path    int true    "Other user ID"
// @Success 200 {object} dto.CanMessageResponse
// @Router /messages/can-message/{userId} [get]
func (h *MessageHandler) CanMessage(c echo.Context) error {
	other, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	ok, err := h.messagingService.CanMessage(c.Request().Context(), currentUserID(c), other)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.CanMessageResponse{CanMessage: ok})
}

// Conversation godoc
// @Summary Messages exchanged with a user, oldest first
// @Tags messages
// @Produce  json
// @Security BearerAuth
// @Param   userId  path    int true    "Other user ID"
// @Param   limit  query    int false    "Most recent N messages (default 50)"
// @Success 200 {array} dto.MessageResponse
// @Router /messages/{userId} [get]
func (h *MessageHandler) Conversation(c echo.Context) error {
	other, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return apperror.Validation("invalid limit")
		}
	}
	msgs, err := h.messagingService.Conversation(c.Request().Context(), currentUserID(c), other, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

// MarkRead godoc
// @Summary Mark every message from a user as read
// @Tags messages
// @Produce  json
// @Security BearerAuth
// @Param   userId  path    int true    "Sender ID"
// @Success 200 {object} dto.MarkReadResponse
// @Router /messages/{userId}/read [post]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	sender, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	n, err := h.messagingService.MarkRead(c.Request().Context(), currentUserID(c), sender)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MarkReadResponse{Updated: n})
}

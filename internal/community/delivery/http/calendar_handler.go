package http

import (
	"net/http"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CalendarHandler serves market calendar events and their sentiment polls.
type CalendarHandler struct {
	calendarService service.CalendarService
	logger          *logger.Logger
}

func NewCalendarHandler(calendarService service.CalendarService, logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, logger: logger}
}

// RegisterRoutes registers /calendar. Reads are public.
func (h *CalendarHandler) RegisterRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("", h.ListEvents)
	g.GET("/:id", h.GetEvent)
	g.POST("", h.CreateEvent, authed)
	g.PUT("/:id", h.UpdateEvent, authed)
	g.DELETE("/:id", h.DeleteEvent, authed)
	g.PUT("/:id/vote", h.VoteEvent, authed)
}

// ListEvents godoc
// @Summary Events in a date range
// @Description Both bounds are inclusive and default to the current Monday to Sunday week (UTC).
// @Tags calendar
// @Produce  json
// @Param   from  query    string false    "YYYY-MM-DD"
// @Param   to  query    string false    "YYYY-MM-DD"
// @Success 200 {array} entity.CalendarEvent
// @Failure 400 {object} dto.ErrorResponse
// @Router /calendar [get]
func (h *CalendarHandler) ListEvents(c echo.Context) error {
	var query dto.CalendarRangeQuery
	if err := bind(c, &query); err != nil {
		return err
	}
	events, err := h.calendarService.ListEvents(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// GetEvent godoc
// @Summary One event with its vote tally
// @Tags calendar
// @Produce  json
// @Param   id  path    int true    "Event ID"
// @Success 200 {object} dto.CalendarEventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /calendar/{id} [get]
func (h *CalendarHandler) GetEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	event, err := h.calendarService.GetEvent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event (admin)
// @Tags calendar
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.CalendarEventRequest   true    "Event"
// @Success 201 {object} entity.CalendarEvent
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /calendar [post]
func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	var req dto.CalendarEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.calendarService.CreateEvent(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Replace an event (admin)
// @Tags calendar
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Event ID"
// @Param   body  body    dto.CalendarEventRequest   true    "Event"
// @Success 200 {object} entity.CalendarEvent
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /calendar/{id} [put]
func (h *CalendarHandler) UpdateEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CalendarEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	event, err := h.calendarService.UpdateEvent(c.Request().Context(), currentUserID(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event and its votes (admin)
// @Tags calendar
// @Security BearerAuth
// @Param   id  path    int true    "Event ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /calendar/{id} [delete]
func (h *CalendarHandler) DeleteEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.calendarService.DeleteEvent(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// VoteEvent godoc
// @Summary Record the caller's sentiment on an event
// @Tags calendar
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Event ID"
// @Param   body  body    dto.CalendarVoteRequest   true    "Sentiment"
// @Success 200 {object} dto.CalendarEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /calendar/{id}/vote [put]
func (h *CalendarHandler) VoteEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CalendarVoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.calendarService.VoteEvent(ctx, currentUserID(c), id, req.Sentiment); err != nil {
		return err
	}
	event, err := h.calendarService.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

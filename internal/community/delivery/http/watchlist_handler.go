package http

import (
	"net/http"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WatchlistHandler serves the watchlist and its submission workflow.
type WatchlistHandler struct {
	watchlistService service.WatchlistService
	approvalService  service.ApprovalService
	logger           *logger.Logger
}

func NewWatchlistHandler(watchlistService service.WatchlistService, approvalService service.ApprovalService, logger *logger.Logger) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService, approvalService: approvalService, logger: logger}
}

// RegisterRoutes registers /watchlist. Reads are public; writes need a session.
func (h *WatchlistHandler) RegisterRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("", h.GetGrouped)
	g.GET("/entries", h.ListEntries)
	g.GET("/entries/:id", h.GetEntry)
	g.POST("/entries", h.AddEntry, authed)
	g.PUT("/entries/:id", h.UpdateEntry, authed)
	g.DELETE("/entries/:id", h.DeleteEntry, authed)
}

// RegisterSubmissionRoutes registers /submissions. Every route requires a session.
func (h *WatchlistHandler) RegisterSubmissionRoutes(g *echo.Group) {
	g.POST("", h.Submit)
	g.GET("", h.ListSubmissions)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/deny", h.Deny)
}

// GetGrouped godoc
// @Summary Watchlist grouped by sector and term
// @Tags watchlist
// @Produce  json
// @Success 200 {object} dto.GroupedWatchlist
// @Router /watchlist [get]
func (h *WatchlistHandler) GetGrouped(c echo.Context) error {
	grouped, err := h.watchlistService.GetGrouped(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grouped)
}

// ListEntries godoc
// @Summary All watchlist entries
// @Tags watchlist
// @Produce  json
// @Success 200 {array} entity.WatchlistEntry
// @Router /watchlist/entries [get]
func (h *WatchlistHandler) ListEntries(c echo.Context) error {
	entries, err := h.watchlistService.ListEntries(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// GetEntry godoc
// @Summary One watchlist entry
// @Tags watchlist
// @Produce  json
// @Param   id  path    int true    "Entry ID"
// @Success 200 {object} entity.WatchlistEntry
// @Failure 404 {object} dto.ErrorResponse
// @Router /watchlist/entries/{id} [get]
func (h *WatchlistHandler) GetEntry(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.watchlistService.GetEntry(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// AddEntry godoc
// @Summary Add an entry directly (admin)
// @Tags watchlist
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.SubmissionRequest   true    "Entry"
// @Success 201 {object} entity.WatchlistEntry
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /watchlist/entries [post]
func (h *WatchlistHandler) AddEntry(c echo.Context) error {
	var req dto.SubmissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.watchlistService.AddEntry(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}

// UpdateEntry godoc
// @Summary Edit an entry (admin)
// @Tags watchlist
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Entry ID"
// @Param   body  body    dto.UpdateEntryRequest   true    "Fields to change"
// @Success 200 {object} entity.WatchlistEntry
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /watchlist/entries/{id} [put]
func (h *WatchlistHandler) UpdateEntry(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.watchlistService.UpdateEntry(c.Request().Context(), currentUserID(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary Remove an entry (admin)
// @Tags watchlist
// @Security BearerAuth
// @Param   id  path    int true    "Entry ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /watchlist/entries/{id} [delete]
func (h *WatchlistHandler) DeleteEntry(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.watchlistService.DeleteEntry(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit godoc
// @Summary Propose a watchlist candidate
// @Tags submissions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.SubmissionRequest   true    "Candidate"
// @Success 201 {object} entity.WatchlistSubmission
// @Failure 400 {object} dto.ErrorResponse
// @Router /submissions [post]
func (h *WatchlistHandler) Submit(c echo.Context) error {
	var req dto.SubmissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.approvalService.Submit(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

// ListSubmissions godoc
// @Summary List submissions
// @Description Admins see every submission, other users only their own.
// @Tags submissions
// @Produce  json
// @Security BearerAuth
// @Param   status  query    string false    "pending, approved or denied"
// @Success 200 {array} entity.WatchlistSubmission
// @Router /submissions [get]
func (h *WatchlistHandler) ListSubmissions(c echo.Context) error {
	var filter dto.SubmissionFilter
	if err := bind(c, &filter); err != nil {
		return err
	}
	subs, err := h.approvalService.ListSubmissions(c.Request().Context(), currentUserID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subs)
}

// Approve godoc
// @Summary Approve a pending submission (admin)
// @Tags submissions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Submission ID"
// @Param   body  body    dto.ReviewRequest   false    "Admin notes"
// @Success 200 {object} entity.WatchlistEntry
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /submissions/{id}/approve [post]
func (h *WatchlistHandler) Approve(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.approvalService.Approve(c.Request().Context(), id, currentUserID(c), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// Deny godoc
// @Summary Deny a pending submission (admin)
// @Tags submissions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Submission ID"
// @Param   body  body    dto.ReviewRequest   false    "Admin notes"
// @Success 200 {object} entity.WatchlistSubmission
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /submissions/{id}/deny [post]
func (h *WatchlistHandler) Deny(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sub, err := h.approvalService.Deny(c.Request().Context(), id, currentUserID(c), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

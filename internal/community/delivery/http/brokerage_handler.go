package http

import (
	"net/http"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BrokerageHandler links the caller's brokerage account and exposes their holdings.
type BrokerageHandler struct {
	brokerageService service.BrokerageService
	logger           *logger.Logger
}

func NewBrokerageHandler(brokerageService service.BrokerageService, logger *logger.Logger) *BrokerageHandler {
	return &BrokerageHandler{brokerageService: brokerageService, logger: logger}
}

// RegisterRoutes registers /brokerage. Every route requires a session.
func (h *BrokerageHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/link-token", h.CreateLinkToken)
	g.POST("/exchange", h.ExchangePublicToken)
	g.POST("/sync", h.SyncHoldings)
	g.GET("/holdings", h.ListHoldings)
}

// CreateLinkToken godoc
// @Summary Start linking a brokerage account
// @Tags brokerage
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.LinkTokenResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /brokerage/link-token [post]
func (h *BrokerageHandler) CreateLinkToken(c echo.Context) error {
	token, err := h.brokerageService.CreateLinkToken(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, token)
}

// ExchangePublicToken godoc
// @Summary Finish linking with the public token from the link flow
// @Tags brokerage
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.ExchangeTokenRequest   true    "Public token"
// @Success 200 {object} entity.BrokerageLink
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /brokerage/exchange [post]
func (h *BrokerageHandler) ExchangePublicToken(c echo.Context) error {
	var req dto.ExchangeTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	link, err := h.brokerageService.ExchangePublicToken(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, link)
}

// SyncHoldings godoc
// @Summary Pull the caller's holdings now
// @Tags brokerage
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} entity.Holding
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /brokerage/sync [post]
func (h *BrokerageHandler) SyncHoldings(c echo.Context) error {
	holdings, err := h.brokerageService.SyncHoldings(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, holdings)
}

// ListHoldings godoc
// @Summary The caller's last synced holdings
// @Tags brokerage
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} entity.Holding
// @Router /brokerage/holdings [get]
func (h *BrokerageHandler) ListHoldings(c echo.Context) error {
	holdings, err := h.brokerageService.ListHoldings(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, holdings)
}

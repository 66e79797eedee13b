package http

import (
	"net/http"
	"strings"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves headlines, refreshed prices and batch run history.
type MarketHandler struct {
	newsService       service.NewsService
	priceService      service.PriceRefreshService
	refreshRunService service.RefreshRunService
	logger            *logger.Logger
}

func NewMarketHandler(
	newsService service.NewsService,
	priceService service.PriceRefreshService,
	refreshRunService service.RefreshRunService,
	logger *logger.Logger,
) *MarketHandler {
	return &MarketHandler{
		newsService:       newsService,
		priceService:      priceService,
		refreshRunService: refreshRunService,
		logger:            logger,
	}
}

// RegisterRoutes registers /news, /prices and /refresh-runs on the API root group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/news", h.Headlines)
	g.GET("/prices/:symbol", h.LastPrice)
	g.POST("/prices/refresh", h.RefreshPrices, authed)
	g.GET("/refresh-runs", h.GetRefreshRuns, authed)
	g.GET("/refresh-runs/:id", h.GetRefreshRunByID, authed)
}

// Headlines godoc
// @Summary Market headlines, newest first
// @Tags market
// @Produce  json
// @Success 200 {array} dto.Article
// @Failure 502 {object} dto.ErrorResponse
// @Router /news [get]
func (h *MarketHandler) Headlines(c echo.Context) error {
	articles, err := h.newsService.Headlines(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

// LastPrice godoc
// @Summary Last refreshed price of a symbol
// @Tags market
// @Produce  json
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.LastPriceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /prices/{symbol} [get]
func (h *MarketHandler) LastPrice(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	price, at, err := h.priceService.LastPrice(c.Request().Context(), symbol)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.LastPriceResponse{Symbol: price.Symbol, Price: price.Price, UpdatedAt: at})
}

// RefreshPrices godoc
// @Summary Refresh watchlist prices now (admin)
// @Description Symbols that fail are listed in the summary; the request still succeeds.
// @Tags market
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.RefreshSummary
// @Failure 403 {object} dto.ErrorResponse
// @Router /prices/refresh [post]
func (h *MarketHandler) RefreshPrices(c echo.Context) error {
	summary, err := h.priceService.RefreshAsAdmin(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// GetRefreshRuns godoc
// @Summary Recent batch runs (admin)
// @Tags market
// @Produce  json
// @Security BearerAuth
// @Param   kind  query    string false    "price_refresh or holdings_sync"
// @Param   limit  query    int false    "Max runs (default 20)"
// @Success 200 {array} dto.RefreshRunResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /refresh-runs [get]
func (h *MarketHandler) GetRefreshRuns(c echo.Context) error {
	var query dto.RefreshRunQuery
	if err := bind(c, &query); err != nil {
		return err
	}
	runs, err := h.refreshRunService.GetRefreshRuns(c.Request().Context(), currentUserID(c), entity.RunKind(query.Kind), query.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRefreshRunByID godoc
// @Summary One batch run (admin)
// @Tags market
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Run ID"
// @Success 200 {object} dto.RefreshRunResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /refresh-runs/{id} [get]
func (h *MarketHandler) GetRefreshRunByID(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	run, err := h.refreshRunService.GetRefreshRunByID(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, run)
}

package http

import (
	"net/http"

	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Watchlist *WatchlistHandler
	Community *CommunityHandler
	Message   *MessageHandler
	Calendar  *CalendarHandler
	Brokerage *BrokerageHandler
	Market    *MarketHandler
	WebSocket *WebSocketHandler
}

// NewServer builds the echo instance with shared middleware and every route under /api/v1.
func NewServer(h Handlers, auth service.AuthService, allowedOrigins []string, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(log))
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowedOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	authed := RequireSession(auth)
	api := e.Group("/api/v1")

	h.Auth.RegisterRoutes(api.Group("/auth"), authed)
	h.Profile.RegisterRoutes(api.Group("/users", authed))
	h.Watchlist.RegisterRoutes(api.Group("/watchlist"), authed)
	h.Watchlist.RegisterSubmissionRoutes(api.Group("/submissions", authed))
	h.Community.RegisterRoutes(api.Group("/posts"), authed, OptionalSession(auth))
	h.Community.RegisterCommentRoutes(api.Group("/comments", authed))
	h.Message.RegisterRoutes(api.Group("/messages", authed))
	h.Calendar.RegisterRoutes(api.Group("/calendar"), authed)
	h.Brokerage.RegisterRoutes(api.Group("/brokerage", authed))
	h.Market.RegisterRoutes(api, authed)
	api.GET("/ws", h.WebSocket.Connect, authed)

	return e
}

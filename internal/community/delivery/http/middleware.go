package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/internal/community/session"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RequireSession rejects requests without a valid session and stores the
// session in the request context. Websocket clients may pass ?token= instead
// of the Authorization header.
func RequireSession(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := auth.Authenticate(c.Request().Context(), tokenFromRequest(c))
			if err != nil {
				return err
			}
			setSession(c, *sess)
			return next(c)
		}
	}
}

// OptionalSession attaches a session when a valid token is present and lets anonymous requests through.
func OptionalSession(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := tokenFromRequest(c); token != "" {
				if sess, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					setSession(c, *sess)
				}
			}
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.QueryParam("token")
}

func setSession(c echo.Context, sess session.Session) {
	c.SetRequest(c.Request().WithContext(session.WithSession(c.Request().Context(), sess)))
}

// currentUserID returns the authenticated user, or 0 for anonymous requests.
func currentUserID(c echo.Context) uint {
	sess, ok := session.FromContext(c.Request().Context())
	if !ok {
		return 0
	}
	return sess.UserID
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// RequestLogger logs one zap line per request and propagates the request id into the request context.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		BeforeNextFunc: func(c echo.Context) {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			c.SetRequest(c.Request().WithContext(logger.WithRequestID(c.Request().Context(), id)))
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.Field("latency", v.Latency.Round(time.Microsecond)),
				logger.StringField("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, logger.ErrorField(v.Error))
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				log.Error("request", fields...)
			case v.Status >= http.StatusBadRequest:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		},
	})
}

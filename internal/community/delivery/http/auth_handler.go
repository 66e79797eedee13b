package http

import (
	"net/http"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles signup, login and the current-user lookup.
type AuthHandler struct {
	authService service.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes registers the auth routes to the Echo group.
func (h *AuthHandler) RegisterRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, authed)
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body  body    dto.SignupRequest   true    "Credentials"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body  body    dto.LoginRequest   true    "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	resp, err := h.authService.Me(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

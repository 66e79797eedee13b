package http

import (
	"net/http"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ProfileHandler serves profiles and the follow graph.
type ProfileHandler struct {
	profileService service.ProfileService
	logger         *logger.Logger
}

func NewProfileHandler(profileService service.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// RegisterRoutes registers the /users routes. Every route requires a session.
func (h *ProfileHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/me", h.UpdateProfile)
	g.PUT("/me/password", h.ChangePassword)
	g.GET("/:id", h.GetProfile)
	g.POST("/:id/follow", h.Follow)
	g.DELETE("/:id/follow", h.Unfollow)
	g.GET("/:id/followers", h.ListFollowers)
	g.GET("/:id/following", h.ListFollowing)
}

// GetProfile godoc
// @Summary Get a user's profile
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "User ID"
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id} [get]
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.profileService.GetProfile(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.UpdateProfileRequest   true    "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/me [put]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := h.profileService.UpdateProfile(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept  json
// @Security BearerAuth
// @Param   body  body    dto.ChangePasswordRequest   true    "Old and new password"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/me/password [put]
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.profileService.ChangePassword(c.Request().Context(), currentUserID(c), req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Follow godoc
// @Summary Follow a user
// @Tags users
// @Security BearerAuth
// @Param   id  path    int true    "User ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/{id}/follow [post]
func (h *ProfileHandler) Follow(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.profileService.Follow(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags users
// @Security BearerAuth
// @Param   id  path    int true    "User ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/follow [delete]
func (h *ProfileHandler) Unfollow(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.profileService.Unfollow(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFollowers godoc
// @Summary List a user's followers
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "User ID"
// @Success 200 {array} dto.UserResponse
// @Router /users/{id}/followers [get]
func (h *ProfileHandler) ListFollowers(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.profileService.ListFollowers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// ListFollowing godoc
// @Summary List who a user follows
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "User ID"
// @Success 200 {array} dto.UserResponse
// @Router /users/{id}/following [get]
func (h *ProfileHandler) ListFollowing(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	users, err := h.profileService.ListFollowing(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

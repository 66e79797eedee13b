package http

import (
	"net/http"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/service"
	"golang-stock-circle/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CommunityHandler serves posts, comments, likes and sentiment votes.
type CommunityHandler struct {
	communityService service.CommunityService
	logger           *logger.Logger
}

func NewCommunityHandler(communityService service.CommunityService, logger *logger.Logger) *CommunityHandler {
	return &CommunityHandler{communityService: communityService, logger: logger}
}

// RegisterRoutes registers /posts. Reads are public; viewer attaches the
// caller's session when one is sent.
func (h *CommunityHandler) RegisterRoutes(g *echo.Group, authed, viewer echo.MiddlewareFunc) {
	g.GET("", h.ListPosts)
	g.GET("/:id", h.GetPost, viewer)
	g.GET("/:id/comments", h.ListComments)
	g.GET("/:id/votes", h.CountVotes)

	g.POST("", h.CreatePost, authed)
	g.DELETE("/:id", h.DeletePost, authed)
	g.POST("/:id/comments", h.AddComment, authed)
	g.POST("/:id/like", h.Like, authed)
	g.DELETE("/:id/like", h.Unlike, authed)
	g.PUT("/:id/vote", h.Vote, authed)
}

// RegisterCommentRoutes registers /comments. Every route requires a session.
func (h *CommunityHandler) RegisterCommentRoutes(g *echo.Group) {
	g.DELETE("/:id", h.DeleteComment)
}

// ListPosts godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce  json
// @Param   symbol  query    string false    "Filter by symbol"
// @Param   limit  query    int false    "Page size (default 20, max 100)"
// @Param   offset  query    int false    "Offset"
// @Success 200 {array} dto.PostResponse
// @Router /posts [get]
func (h *CommunityHandler) ListPosts(c echo.Context) error {
	var query dto.ListPostsQuery
	if err := bind(c, &query); err != nil {
		return err
	}
	posts, err := h.communityService.ListPosts(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary Get a post with counts and vote tally
// @Description Signed-in callers also get their own like and vote under "viewer".
// @Tags posts
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Post ID"
// @Success 200 {object} dto.PostResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [get]
func (h *CommunityHandler) GetPost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.communityService.GetPost(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body  body    dto.CreatePostRequest   true    "Post"
// @Success 201 {object} dto.PostResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /posts [post]
func (h *CommunityHandler) CreatePost(c echo.Context) error {
	var req dto.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.communityService.CreatePost(c.Request().Context(), currentUserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// DeletePost godoc
// @Summary Delete a post (author or admin)
// @Tags posts
// @Security BearerAuth
// @Param   id  path    int true    "Post ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id} [delete]
func (h *CommunityHandler) DeletePost(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.communityService.DeletePost(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListComments godoc
// @Summary List a post's comments, oldest first
// @Tags posts
// @Produce  json
// @Param   id  path    int true    "Post ID"
// @Success 200 {array} dto.CommentResponse
// @Router /posts/{id}/comments [get]
func (h *CommunityHandler) ListComments(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.communityService.ListComments(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Post ID"
// @Param   body  body    dto.CommentRequest   true    "Comment"
// @Success 201 {object} dto.CommentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id}/comments [post]
func (h *CommunityHandler) AddComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.communityService.AddComment(c.Request().Context(), currentUserID(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment godoc
// @Summary Delete a comment (author or admin)
// @Tags posts
// @Security BearerAuth
// @Param   id  path    int true    "Comment ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommunityHandler) DeleteComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.communityService.DeleteComment(c.Request().Context(), currentUserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Like godoc
// @Summary Like a post
// @Description Liking twice is a no-op reported as already_liked.
// @Tags posts
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Router /posts/{id}/like [post]
func (h *CommunityHandler) Like(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.communityService.Like(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Unlike godoc
// @Summary Remove a like
// @Tags posts
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Post ID"
// @Success 200 {object} dto.LikeResponse
// @Router /posts/{id}/like [delete]
func (h *CommunityHandler) Unlike(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.communityService.Unlike(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Vote godoc
// @Summary Record the caller's short and long term outlook
// @Tags posts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Post ID"
// @Param   body  body    dto.VoteRequest   true    "Sentiments"
// @Success 200 {object} dto.VoteSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /posts/{id}/vote [put]
func (h *CommunityHandler) Vote(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.VoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	if err := h.communityService.Vote(ctx, currentUserID(c), id, req.ShortTerm, req.LongTerm); err != nil {
		return err
	}
	summary, err := h.communityService.CountVotes(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// CountVotes godoc
// @Summary Vote tally for a post
// @Tags posts
// @Produce  json
// @Param   id  path    int true    "Post ID"
// @Success 200 {object} dto.VoteSummary
// @Router /posts/{id}/votes [get]
func (h *CommunityHandler) CountVotes(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	summary, err := h.communityService.CountVotes(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

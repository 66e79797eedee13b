package service

import (
	"context"
	"errors"
	"strings"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"gorm.io/gorm"
)

// CommunityService runs the discussion feed: posts, comments, likes and sentiment votes.
type CommunityService interface {
	CreatePost(ctx context.Context, authorID uint, req dto.CreatePostRequest) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, query dto.ListPostsQuery) ([]dto.PostResponse, error)
	// GetPost reports the viewer's own like and vote when viewerID is not 0.
	GetPost(ctx context.Context, viewerID, postID uint) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uint) error

	AddComment(ctx context.Context, authorID, postID uint, req dto.CommentRequest) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, postID uint) ([]dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID uint) error

	Like(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error)
	Unlike(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error)

	// Vote records the user's outlook, overwriting any earlier vote on the post.
	Vote(ctx context.Context, userID, postID uint, shortTerm, longTerm entity.Sentiment) error
	CountVotes(ctx context.Context, postID uint) (*dto.VoteSummary, error)
}

type CommunityRepositories struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Likes    repository.LikeRepository
	Votes    repository.VoteRepository
}

func NewCommunityService(repos CommunityRepositories, log *logger.Logger) CommunityService {
	return &communityService{
		users:    repos.Users,
		posts:    repos.Posts,
		comments: repos.Comments,
		likes:    repos.Likes,
		votes:    repos.Votes,
		logger:   log,
	}
}

type communityService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	votes    repository.VoteRepository
	logger   *logger.Logger
}

func (s *communityService) CreatePost(ctx context.Context, authorID uint, req dto.CreatePostRequest) (*dto.PostResponse, error) {
	post := &entity.Post{
		AuthorID: authorID,
		Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
	}
	switch {
	case post.Symbol == "":
		return nil, apperror.Validation("symbol is required")
	case post.Title == "":
		return nil, apperror.Validation("title is required")
	case post.Content == "":
		return nil, apperror.Validation("content is required")
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("Failed to create post", logger.ErrorField(err), logger.UintField("author_id", authorID))
		return nil, err
	}
	return s.GetPost(ctx, 0, post.ID)
}

func (s *communityService) ListPosts(ctx context.Context, query dto.ListPostsQuery) ([]dto.PostResponse, error) {
	page := query.Pagination.Normalize(20, 100)
	posts, err := s.posts.List(ctx, strings.ToUpper(strings.TrimSpace(query.Symbol)), page.Limit, page.Offset)
	if err != nil {
		s.logger.Error("Failed to list posts", logger.ErrorField(err))
		return nil, err
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	commentCounts, err := s.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		item := toPostResponse(&posts[i])
		item.CommentCount = commentCounts[posts[i].ID]
		item.LikeCount = likeCounts[posts[i].ID]
		resp = append(resp, item)
	}
	return resp, nil
}

func (s *communityService) GetPost(ctx context.Context, viewerID, postID uint) (*dto.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "post", postID)
	}

	resp := toPostResponse(post)
	commentCounts, err := s.comments.CountByPosts(ctx, []uint{postID})
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CountByPosts(ctx, []uint{postID})
	if err != nil {
		return nil, err
	}
	resp.CommentCount = commentCounts[postID]
	resp.LikeCount = likeCounts[postID]

	if resp.Votes, err = s.CountVotes(ctx, postID); err != nil {
		return nil, err
	}
	if viewerID != 0 {
		if resp.Viewer, err = s.viewerState(ctx, viewerID, postID); err != nil {
			return nil, err
		}
	}
	return &resp, nil
}

func (s *communityService) viewerState(ctx context.Context, viewerID, postID uint) (*dto.PostViewer, error) {
	liked, err := s.likes.Exists(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	viewer := &dto.PostViewer{Liked: liked}
	vote, err := s.votes.FindByPostAndUser(ctx, postID, viewerID)
	switch {
	case err == nil:
		viewer.ShortTermSentiment = vote.ShortTermSentiment
		viewer.LongTermSentiment = vote.LongTermSentiment
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return viewer, nil
}

func (s *communityService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return lookupErr(err, "post", postID)
	}
	if err := s.requireOwnerOrAdmin(ctx, userID, post.AuthorID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("post %d not found", postID)
		}
		s.logger.Error("Failed to delete post", logger.ErrorField(err), logger.UintField("post_id", postID))
		return err
	}
	return nil
}

func (s *communityService) AddComment(ctx context.Context, authorID, postID uint, req dto.CommentRequest) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.Validation("content is required")
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, lookupErr(err, "user", authorID)
	}

	comment := &entity.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to add comment", logger.ErrorField(err), logger.UintField("post_id", postID))
		return nil, err
	}
	comment.Author = *author
	resp := toCommentResponse(comment)
	return &resp, nil
}

func (s *communityService) ListComments(ctx context.Context, postID uint) ([]dto.CommentResponse, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, toCommentResponse(&comments[i]))
	}
	return resp, nil
}

func (s *communityService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return lookupErr(err, "comment", commentID)
	}
	if err := s.requireOwnerOrAdmin(ctx, userID, comment.AuthorID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// Like is idempotent: liking twice reports AlreadyLiked and changes nothing.
func (s *communityService) Like(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "post", postID)
	}

	resp := &dto.LikeResponse{Liked: true}
	if err := s.likes.Create(ctx, &entity.Like{PostID: postID, UserID: userID}); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("Failed to like post", logger.ErrorField(err), logger.UintField("post_id", postID))
			return nil, err
		}
		resp.AlreadyLiked = true
	}
	return s.withLikeCount(ctx, postID, resp)
}

func (s *communityService) Unlike(ctx context.Context, userID, postID uint) (*dto.LikeResponse, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, lookupErr(err, "post", postID)
	}
	if _, err := s.likes.Delete(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.withLikeCount(ctx, postID, &dto.LikeResponse{Liked: false})
}

func (s *communityService) withLikeCount(ctx context.Context, postID uint, resp *dto.LikeResponse) (*dto.LikeResponse, error) {
	counts, err := s.likes.CountByPosts(ctx, []uint{postID})
	if err != nil {
		return nil, err
	}
	resp.LikeCount = counts[postID]
	return resp, nil
}

func (s *communityService) Vote(ctx context.Context, userID, postID uint, shortTerm, longTerm entity.Sentiment) error {
	if !shortTerm.Valid() || !longTerm.Valid() {
		return apperror.Validation("sentiment must be bullish, bearish or neutral")
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return lookupErr(err, "post", postID)
	}

	err := s.votes.Upsert(ctx, &entity.PostVote{
		PostID:             postID,
		UserID:             userID,
		ShortTermSentiment: shortTerm,
		LongTermSentiment:  longTerm,
	})
	if err != nil {
		s.logger.Error("Failed to record vote", logger.ErrorField(err), logger.UintField("post_id", postID), logger.UintField("user_id", userID))
		return err
	}
	return nil
}

func (s *communityService) CountVotes(ctx context.Context, postID uint) (*dto.VoteSummary, error) {
	shortRows, err := s.votes.CountShortTerm(ctx, postID)
	if err != nil {
		return nil, err
	}
	longRows, err := s.votes.CountLongTerm(ctx, postID)
	if err != nil {
		return nil, err
	}

	summary := &dto.VoteSummary{}
	summary.ShortTerm, summary.Total = TallySentiments(shortRows)
	summary.LongTerm, _ = TallySentiments(longRows)
	return summary, nil
}

func (s *communityService) requireOwnerOrAdmin(ctx context.Context, userID, ownerID uint) error {
	if userID == ownerID {
		return nil
	}
	_, err := requireAdmin(ctx, s.users, userID)
	return err
}

func toPostResponse(p *entity.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:             p.ID,
		AuthorID:       p.AuthorID,
		AuthorUsername: p.Author.Username,
		Symbol:         p.Symbol,
		Title:          p.Title,
		Content:        p.Content,
		CreatedAt:      p.CreatedAt,
	}
}

func toCommentResponse(c *entity.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:             c.ID,
		PostID:         c.PostID,
		AuthorID:       c.AuthorID,
		AuthorUsername: c.Author.Username,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt,
	}
}

package dto

import (
	"time"

	"golang-stock-circle/internal/entity"
)

type CreatePostRequest struct {
	Symbol  string `json:"symbol" validate:"required,max=15"`
	Title   string `json:"title" validate:"required,max=300"`
	Content string `json:"content" validate:"required"`
}

type ListPostsQuery struct {
	Pagination
	Symbol string `query:"symbol"`
}

type PostResponse struct {
	ID             uint         `json:"id"`
	AuthorID       uint         `json:"author_id"`
	AuthorUsername string       `json:"author_username"`
	Symbol         string       `json:"symbol"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	CreatedAt      time.Time    `json:"created_at"`
	CommentCount   int64        `json:"comment_count"`
	LikeCount      int64        `json:"like_count"`
	Votes          *VoteSummary `json:"votes,omitempty"`
	Viewer         *PostViewer  `json:"viewer,omitempty"`
}

// PostViewer is the signed-in reader's own interaction with a post.
type PostViewer struct {
	Liked              bool             `json:"liked"`
	ShortTermSentiment entity.Sentiment `json:"short_term_sentiment,omitempty"`
	LongTermSentiment  entity.Sentiment `json:"long_term_sentiment,omitempty"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required"`
}

type CommentResponse struct {
	ID             uint      `json:"id"`
	PostID         uint      `json:"post_id"`
	AuthorID       uint      `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type LikeResponse struct {
	Liked        bool  `json:"liked"`
	AlreadyLiked bool  `json:"already_liked,omitempty"`
	LikeCount    int64 `json:"like_count"`
}

type VoteRequest struct {
	ShortTerm entity.Sentiment `json:"short_term" validate:"required,oneof=bullish bearish neutral"`
	LongTerm  entity.Sentiment `json:"long_term" validate:"required,oneof=bullish bearish neutral"`
}

// SentimentCount is one row of a grouped vote count.
type SentimentCount struct {
	Sentiment entity.Sentiment
	Count     int64
}

// SentimentTally counts votes per sentiment. Percentages are 0 when there are no votes.
type SentimentTally struct {
	Bullish        int64   `json:"bullish"`
	Bearish        int64   `json:"bearish"`
	Neutral        int64   `json:"neutral"`
	BullishPercent float64 `json:"bullish_percent"`
	BearishPercent float64 `json:"bearish_percent"`
	NeutralPercent float64 `json:"neutral_percent"`
}

type VoteSummary struct {
	ShortTerm SentimentTally `json:"short_term"`
	LongTerm  SentimentTally `json:"long_term"`
	Total     int64          `json:"total"`
}

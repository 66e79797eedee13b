package entity

import "time"

// Post is a community discussion thread about a symbol.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Symbol    string    `gorm:"type:varchar(15);not null;index" json:"symbol"`
	Title     string    `gorm:"type:varchar(300);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// Like is unique per (post, user).
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// PostVote holds one user's short and long term outlook on a post.
// Unique per (post, user) and updated in place.
type PostVote struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	PostID             uint      `gorm:"not null;uniqueIndex:idx_post_votes_post_user" json:"post_id"`
	UserID             uint      `gorm:"not null;uniqueIndex:idx_post_votes_post_user" json:"user_id"`
	ShortTermSentiment Sentiment `gorm:"type:varchar(10);not null" json:"short_term_sentiment"`
	LongTermSentiment  Sentiment `gorm:"type:varchar(10);not null" json:"long_term_sentiment"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PostVote) TableName() string {
	return "post_votes"
}

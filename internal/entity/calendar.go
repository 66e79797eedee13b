package entity

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Tags is a text array column on postgres and its array literal as text elsewhere.
type Tags pq.StringArray

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	return pq.StringArray(t).Value()
}

func (t *Tags) Scan(src interface{}) error {
	return (*pq.StringArray)(t).Scan(src)
}

func (Tags) GormDataType() string {
	return "text[]"
}

func (Tags) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// CalendarEvent is a market calendar item (earnings, macro releases, ...).
type CalendarEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Symbol      string    `gorm:"type:varchar(15);index" json:"symbol,omitempty"`
	EventType   string    `gorm:"type:varchar(30);not null" json:"event_type"`
	EventDate   time.Time `gorm:"not null;index" json:"event_date"`
	Description string    `gorm:"type:text" json:"description"`
	Tags        Tags      `json:"tags"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// CalendarVote is a sentiment poll answer, unique per (event, user).
type CalendarVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_calendar_votes_event_user" json:"event_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_calendar_votes_event_user" json:"user_id"`
	Sentiment Sentiment `gorm:"type:varchar(10);not null" json:"sentiment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CalendarVote) TableName() string {
	return "calendar_votes"
}

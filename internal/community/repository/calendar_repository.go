package repository

import (
	"context"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CalendarRepository stores market calendar events and their sentiment polls.
type CalendarRepository interface {
	Create(ctx context.Context, event *entity.CalendarEvent) error
	FindByID(ctx context.Context, id uint) (*entity.CalendarEvent, error)
	Save(ctx context.Context, event *entity.CalendarEvent) error
	Delete(ctx context.Context, id uint) error
	ListBetween(ctx context.Context, from, to time.Time) ([]entity.CalendarEvent, error)
	UpsertVote(ctx context.Context, vote *entity.CalendarVote) error
	CountVotes(ctx context.Context, eventID uint) ([]dto.SentimentCount, error)
}

func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &calendarRepository{db: db}
}

type calendarRepository struct {
	db *gorm.DB
}

func (r *calendarRepository) Create(ctx context.Context, event *entity.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *calendarRepository) FindByID(ctx context.Context, id uint) (*entity.CalendarEvent, error) {
	var event entity.CalendarEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *calendarRepository) Save(ctx context.Context, event *entity.CalendarEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete removes an event and its votes.
func (r *calendarRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&entity.CalendarVote{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.CalendarEvent{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListBetween returns events with from <= event_date < to, earliest first.
func (r *calendarRepository) ListBetween(ctx context.Context, from, to time.Time) ([]entity.CalendarEvent, error) {
	var events []entity.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("event_date >= ? AND event_date < ?", from, to).
		Order("event_date asc, id asc").
		Find(&events).Error
	return events, err
}

func (r *calendarRepository) UpsertVote(ctx context.Context, vote *entity.CalendarVote) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sentiment", "updated_at"}),
	}).Create(vote).Error
}

func (r *calendarRepository) CountVotes(ctx context.Context, eventID uint) ([]dto.SentimentCount, error) {
	var rows []dto.SentimentCount
	err := r.db.WithContext(ctx).Model(&entity.CalendarVote{}).
		Select("sentiment, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Group("sentiment").
		Scan(&rows).Error
	return rows, err
}

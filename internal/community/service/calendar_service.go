package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/utils"

	"gorm.io/gorm"
)

// CalendarService manages market calendar events and their sentiment polls.
type CalendarService interface {
	CreateEvent(ctx context.Context, adminID uint, req dto.CalendarEventRequest) (*entity.CalendarEvent, error)
	UpdateEvent(ctx context.Context, adminID, eventID uint, req dto.CalendarEventRequest) (*entity.CalendarEvent, error)
	DeleteEvent(ctx context.Context, adminID, eventID uint) error
	// ListEvents returns events in [from, to]. Empty bounds default to the current week.
	ListEvents(ctx context.Context, query dto.CalendarRangeQuery) ([]entity.CalendarEvent, error)
	GetEvent(ctx context.Context, eventID uint) (*dto.CalendarEventResponse, error)
	VoteEvent(ctx context.Context, userID, eventID uint, sentiment entity.Sentiment) error
	CountEventVotes(ctx context.Context, eventID uint) (dto.SentimentTally, int64, error)
}

func NewCalendarService(events repository.CalendarRepository, users repository.UserRepository, log *logger.Logger) CalendarService {
	return &calendarService{events: events, users: users, logger: log, now: time.Now}
}

type calendarService struct {
	events repository.CalendarRepository
	users  repository.UserRepository
	logger *logger.Logger
	now    func() time.Time
}

func (s *calendarService) CreateEvent(ctx context.Context, adminID uint, req dto.CalendarEventRequest) (*entity.CalendarEvent, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	event := &entity.CalendarEvent{CreatedBy: adminID}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Error("Failed to create calendar event", logger.ErrorField(err))
		return nil, err
	}
	return event, nil
}

func (s *calendarService) UpdateEvent(ctx context.Context, adminID, eventID uint, req dto.CalendarEventRequest) (*entity.CalendarEvent, error) {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, "calendar event", eventID)
	}
	if err := applyEventRequest(event, req); err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, event); err != nil {
		s.logger.Error("Failed to update calendar event", logger.ErrorField(err), logger.UintField("event_id", eventID))
		return nil, err
	}
	return event, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, adminID, eventID uint) error {
	if _, err := requireAdmin(ctx, s.users, adminID); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("calendar event %d not found", eventID)
		}
		return err
	}
	return nil
}

func (s *calendarService) ListEvents(ctx context.Context, query dto.CalendarRangeQuery) ([]entity.CalendarEvent, error) {
	from, to, err := s.eventRange(query)
	if err != nil {
		return nil, err
	}
	return s.events.ListBetween(ctx, from, to.AddDate(0, 0, 1))
}

// eventRange resolves the inclusive day range. A single bound spans the week
// starting (or ending) on it; no bounds means the current week.
func (s *calendarService) eventRange(query dto.CalendarRangeQuery) (time.Time, time.Time, error) {
	weekStart := utils.StartOfWeek(s.now().UTC())
	from, err := utils.ParseDateOr(query.From, weekStart)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("from must be YYYY-MM-DD")
	}
	to, err := utils.ParseDateOr(query.To, from.AddDate(0, 0, 6))
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("to must be YYYY-MM-DD")
	}
	if query.From == "" && query.To != "" {
		from = to.AddDate(0, 0, -6)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperror.Validation("to must not be before from")
	}
	return from, to, nil
}

func (s *calendarService) GetEvent(ctx context.Context, eventID uint) (*dto.CalendarEventResponse, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, "calendar event", eventID)
	}
	tally, total, err := s.CountEventVotes(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &dto.CalendarEventResponse{CalendarEvent: *event, Votes: tally, Total: total}, nil
}

func (s *calendarService) VoteEvent(ctx context.Context, userID, eventID uint, sentiment entity.Sentiment) error {
	if !sentiment.Valid() {
		return apperror.Validation("sentiment must be bullish, bearish or neutral")
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return lookupErr(err, "calendar event", eventID)
	}
	err := s.events.UpsertVote(ctx, &entity.CalendarVote{EventID: eventID, UserID: userID, Sentiment: sentiment})
	if err != nil {
		s.logger.Error("Failed to record calendar vote", logger.ErrorField(err), logger.UintField("event_id", eventID))
		return err
	}
	return nil
}

func (s *calendarService) CountEventVotes(ctx context.Context, eventID uint) (dto.SentimentTally, int64, error) {
	rows, err := s.events.CountVotes(ctx, eventID)
	if err != nil {
		return dto.SentimentTally{}, 0, err
	}
	tally, total := TallySentiments(rows)
	return tally, total, nil
}

func applyEventRequest(event *entity.CalendarEvent, req dto.CalendarEventRequest) error {
	title := strings.TrimSpace(req.Title)
	eventType := strings.TrimSpace(req.EventType)
	if title == "" {
		return apperror.Validation("title is required")
	}
	if eventType == "" {
		return apperror.Validation("event type is required")
	}
	date, err := time.Parse(utils.DateLayout, strings.TrimSpace(req.EventDate))
	if err != nil {
		return apperror.Validation("event date must be YYYY-MM-DD")
	}

	tags := make(entity.Tags, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	event.Title = title
	event.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	event.EventType = eventType
	event.EventDate = date.UTC()
	event.Description = strings.TrimSpace(req.Description)
	event.Tags = tags
	return nil
}

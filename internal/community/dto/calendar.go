package dto

import "golang-stock-circle/internal/entity"

// CalendarEventRequest creates or replaces an event. EventDate is YYYY-MM-DD.
type CalendarEventRequest struct {
	Title       string   `json:"title" validate:"required"`
	Symbol      string   `json:"symbol" validate:"max=15"`
	EventType   string   `json:"event_type" validate:"required,max=30"`
	EventDate   string   `json:"event_date" validate:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type CalendarRangeQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

type CalendarVoteRequest struct {
	Sentiment entity.Sentiment `json:"sentiment" validate:"required,oneof=bullish bearish neutral"`
}

type CalendarEventResponse struct {
	entity.CalendarEvent
	Votes SentimentTally `json:"votes"`
	Total int64          `json:"total_votes"`
}

package consumer

import (
	"sync"
	"testing"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHub struct {
	mu     sync.Mutex
	events []dto.Event
}

func (h *recordingHub) Deliver(event dto.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateGrouped() { c.calls++ }

func TestEventConsumer_Handle(t *testing.T) {
	hub := &recordingHub{}
	watchlist := &countingInvalidator{}
	c := NewEventConsumer(nil, hub, watchlist, logger.NewNop())

	c.Handle(redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"recipient_id": "4",
		"event":        `{"type":"message.sent","recipient_id":4,"payload":{"body":"hi"}}`,
	}})
	c.Handle(redis.XMessage{ID: "2-0", Values: map[string]interface{}{
		"recipient_id": "0",
		"event":        `{"type":"` + common.EventWatchlistUpdated + `","recipient_id":0,"payload":{}}`,
	}})
	c.Handle(redis.XMessage{ID: "3-0", Values: map[string]interface{}{"event": "{not json"}})
	c.Handle(redis.XMessage{ID: "4-0", Values: map[string]interface{}{}})

	require.Len(t, hub.events, 2)
	assert.Equal(t, uint(4), hub.events[0].RecipientID)
	assert.JSONEq(t, `{"body":"hi"}`, string(hub.events[0].Payload))
	assert.Equal(t, common.EventWatchlistUpdated, hub.events[1].Type)
	assert.Equal(t, 1, watchlist.calls)
}

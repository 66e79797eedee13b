package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/pkg/common"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// EventPublisher pushes user-addressed notifications onto the community event stream.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, recipientID uint, payload interface{}) error
}

type eventStreamRepository struct {
	client *redis.Client
	maxLen int64
}

func NewEventStreamRepository(client *redis.Client, maxLen int64) EventPublisher {
	return &eventStreamRepository{client: client, maxLen: maxLen}
}

func (r *eventStreamRepository) Publish(ctx context.Context, eventType string, recipientID uint, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	event, err := json.Marshal(dto.Event{Type: eventType, RecipientID: recipientID, Payload: raw})
	if err != nil {
		return err
	}

	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamCommunityEvents,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"recipient_id": strconv.FormatUint(uint64(recipientID), 10),
			"event":        string(event),
		},
	}).Err()
}

// DecodeEvent reads an event written by Publish back from a stream message.
func DecodeEvent(msg redis.XMessage) (*dto.Event, error) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return nil, fmt.Errorf("stream message %s has no event field", msg.ID)
	}
	var event dto.Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, fmt.Errorf("decode stream message %s: %w", msg.ID, err)
	}
	return &event, nil
}

// PriceCache keeps the latest refreshed price of each symbol outside the database.
type PriceCache interface {
	SetLastPrice(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) error
	GetLastPrice(ctx context.Context, symbol string) (*decimal.Decimal, *time.Time, error)
}

type redisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPriceCache(client *redis.Client, ttl time.Duration) PriceCache {
	return &redisPriceCache{client: client, ttl: ttl}
}

func (r *redisPriceCache) SetLastPrice(ctx context.Context, symbol string, price decimal.Decimal, at time.Time) error {
	key := fmt.Sprintf(common.RedisKeyLastPrice, symbol)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":      price.String(),
		"updated_at": at.UTC().Format(time.RFC3339),
	})
	pipe.Expire(ctx, key, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// GetLastPrice returns nils when the symbol has no cached price.
func (r *redisPriceCache) GetLastPrice(ctx context.Context, symbol string) (*decimal.Decimal, *time.Time, error) {
	values, err := r.client.HGetAll(ctx, fmt.Sprintf(common.RedisKeyLastPrice, symbol)).Result()
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		return nil, nil, nil
	}
	price, err := decimal.NewFromString(values["price"])
	if err != nil {
		return nil, nil, fmt.Errorf("parse cached price for %s: %w", symbol, err)
	}
	at, err := time.Parse(time.RFC3339, values["updated_at"])
	if err != nil {
		return &price, nil, nil
	}
	return &price, &at, nil
}

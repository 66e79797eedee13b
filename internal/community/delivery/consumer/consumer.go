package consumer

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/pkg/common"
	"golang-stock-circle/pkg/logger"
	"golang-stock-circle/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Deliverer receives decoded stream events.
type Deliverer interface {
	Deliver(event dto.Event)
}

// CacheInvalidator drops locally cached views that an event makes stale.
type CacheInvalidator interface {
	InvalidateGrouped()
}

// EventConsumer tails the community event stream and hands each event to the websocket hub.
type EventConsumer struct {
	redisClient *redis.Client
	hub         Deliverer
	watchlist   CacheInvalidator
	block       time.Duration
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewEventConsumer creates a new EventConsumer.
func NewEventConsumer(redisClient *redis.Client, hub Deliverer, watchlist CacheInvalidator, log *logger.Logger) *EventConsumer {
	return &EventConsumer{
		redisClient: redisClient,
		hub:         hub,
		watchlist:   watchlist,
		block:       5 * time.Second,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins tailing the stream from new messages only.
func (c *EventConsumer) Start(ctx context.Context) {
	c.logger.Info("Event consumer started", logger.StringField("stream", common.RedisStreamCommunityEvents))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		lastID := "$"
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Event consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Event consumer stopping")
				return
			default:
				lastID = c.poll(ctx, lastID)
			}
		}
	})
}

// poll reads one batch and returns the id to continue from.
func (c *EventConsumer) poll(ctx context.Context, lastID string) string {
	streams, err := c.redisClient.XRead(ctx, &redis.XReadArgs{
		Streams: []string{common.RedisStreamCommunityEvents, lastID},
		Count:   100,
		Block:   c.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return lastID
		}
		c.logger.Error("Failed to read event stream", logger.ErrorField(err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return lastID
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			c.Handle(msg)
			lastID = msg.ID
		}
	}
	return lastID
}

// Handle decodes one stream message and dispatches it.
func (c *EventConsumer) Handle(msg redis.XMessage) {
	event, err := repository.DecodeEvent(msg)
	if err != nil {
		c.logger.Warn("Skipping malformed stream message", logger.ErrorField(err))
		return
	}
	if event.Type == common.EventWatchlistUpdated {
		c.watchlist.InvalidateGrouped()
	}
	c.hub.Deliver(*event)
}

// Stop gracefully shuts down the consumer.
func (c *EventConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Event consumer stopped")
}

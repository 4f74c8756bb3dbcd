// Package events publishes user lifecycle events to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hpnchanel/usersvc/internal/metrics"
)

const (
	// StreamKey is the Redis stream for user events.
	StreamKey = "stream:user_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Type names a lifecycle transition.
type Type string

const (
	UserCreated Type = "user.created"
	UserUpdated Type = "user.updated"
	UserDeleted Type = "user.deleted"
)

// Event is the payload written to the stream.
type Event struct {
	Type       Type   `json:"type"`
	UserID     string `json:"user_id"`
	Username   string `json:"username,omitempty"`
	IsActive   bool   `json:"is_active"`
	OccurredAt int64  `json:"t"` // Unix milliseconds
}

// NewEvent builds an event stamped at occurredAt.
func NewEvent(typ Type, userID, username string, isActive bool, occurredAt time.Time) Event {
	return Event{
		Type:       typ,
		UserID:     userID,
		Username:   username,
		IsActive:   isActive,
		OccurredAt: occurredAt.UnixMilli(),
	}
}

// StreamAdder is the subset of the Redis client the publisher uses.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Publisher enqueues user events to a Redis stream.
type Publisher struct {
	redis   StreamAdder
	logger  *slog.Logger
	metrics metrics.Recorder

	inFlight sync.WaitGroup
}

// NewPublisher creates a new event publisher.
func NewPublisher(client StreamAdder, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream and returns its stream ID.
func (p *Publisher) Publish(ctx context.Context, event Event) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// PublishAsync publishes without blocking the caller.
// Failures are logged and counted, never returned.
func (p *Publisher) PublishAsync(event Event) {
	p.inFlight.Add(1)
	go func() {
		defer p.inFlight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish user event",
				slog.String("type", string(event.Type)),
				slog.String("user_id", event.UserID),
				slog.String("error", err.Error()),
			)
			p.metrics.IncEventPublished("dropped")
			return
		}

		p.logger.Debug("user event published",
			slog.String("type", string(event.Type)),
			slog.String("stream_id", streamID),
		)
		p.metrics.IncEventPublished("success")
	}()
}

// Close waits for in-flight publishes or until ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

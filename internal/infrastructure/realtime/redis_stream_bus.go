package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/shared"
	"github.com/loomline/backend/internal/infrastructure/config"
)

const defaultStreamPrefix = "order:events:"

// RedisStreamBus implements Bus on Redis Streams, one stream per order.
// XADD preserves append order, which is what gives consumers per-order FIFO;
// cross-order ordering is not promised.
type RedisStreamBus struct {
	client *redis.Client
	prefix string
	maxLen int64
	logger *zap.Logger
}

// NewRedisStreamBus creates a stream bus using an existing Redis client
func NewRedisStreamBus(client *redis.Client, cfg config.RealtimeConfig, logger *zap.Logger) *RedisStreamBus {
	prefix := cfg.StreamPrefix
	if prefix == "" {
		prefix = defaultStreamPrefix
	}
	return &RedisStreamBus{
		client: client,
		prefix: prefix,
		maxLen: cfg.MaxLen,
		logger: logger,
	}
}

func (b *RedisStreamBus) streamKey(orderID uuid.UUID) string {
	return b.prefix + orderID.String()
}

// PublishOrderEvent appends an event to the order's stream
func (b *RedisStreamBus) PublishOrderEvent(ctx context.Context, orderID uuid.UUID, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event for stream: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: b.streamKey(orderID),
		Values: map[string]interface{}{
			"event_id":    event.EventID().String(),
			"event_type":  event.EventType(),
			"occurred_at": event.OccurredAt().Format(time.RFC3339Nano),
			"payload":     payload,
		},
	}
	if b.maxLen > 0 {
		// Approximate trimming is cheap and keeps old entries from
		// accumulating forever on long-lived orders
		args.MaxLen = b.maxLen
		args.Approx = true
	}

	id, err := b.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to append to order stream: %w", err)
	}

	b.logger.Debug("event published to order stream",
		zap.String("order_id", orderID.String()),
		zap.String("event_type", event.EventType()),
		zap.String("stream_id", id),
	)
	return nil
}

// Replay returns up to limit events strictly after afterID, oldest first
func (b *RedisStreamBus) Replay(ctx context.Context, orderID uuid.UUID, afterID string, limit int64) ([]StreamEvent, error) {
	start := "-"
	if afterID != "" {
		// Exclusive range start, supported since Redis 6.2
		start = "(" + afterID
	}
	if limit <= 0 {
		limit = 100
	}

	messages, err := b.client.XRangeN(ctx, b.streamKey(orderID), start, "+", limit).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to replay order stream: %w", err)
	}

	events := make([]StreamEvent, 0, len(messages))
	for _, msg := range messages {
		event, err := parseStreamMessage(msg)
		if err != nil {
			b.logger.Warn("skipping malformed stream entry",
				zap.String("order_id", orderID.String()),
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func parseStreamMessage(msg redis.XMessage) (StreamEvent, error) {
	event := StreamEvent{StreamID: msg.ID}

	rawID, ok := msg.Values["event_id"].(string)
	if !ok {
		return event, fmt.Errorf("missing event_id in stream entry %s", msg.ID)
	}
	eventID, err := uuid.Parse(rawID)
	if err != nil {
		return event, fmt.Errorf("invalid event_id in stream entry %s: %w", msg.ID, err)
	}
	event.EventID = eventID

	eventType, ok := msg.Values["event_type"].(string)
	if !ok {
		return event, fmt.Errorf("missing event_type in stream entry %s", msg.ID)
	}
	event.EventType = eventType

	if raw, ok := msg.Values["occurred_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			event.OccurredAt = ts
		}
	}
	if raw, ok := msg.Values["payload"].(string); ok {
		event.Payload = []byte(raw)
	}
	return event, nil
}

// Ensure RedisStreamBus implements Bus
var _ Bus = (*RedisStreamBus)(nil)

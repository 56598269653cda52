package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// StreamEvent is one entry on an order's realtime stream. StreamID is assigned
// by the stream backend on append and is strictly increasing within an order,
// so a consumer that remembers the last ID it saw can resume without gaps.
type StreamEvent struct {
	StreamID   string    `json:"stream_id"`
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    []byte    `json:"payload"`
}

// Bus publishes order events onto per-order streams and replays them for
// consumers that connect late or reconnect after a gap.
type Bus interface {
	// PublishOrderEvent appends an event to the order's stream
	PublishOrderEvent(ctx context.Context, orderID uuid.UUID, event shared.DomainEvent) error

	// Replay returns up to limit events strictly after afterID, oldest first.
	// An empty afterID replays from the beginning of the stream.
	Replay(ctx context.Context, orderID uuid.UUID, afterID string, limit int64) ([]StreamEvent, error)
}

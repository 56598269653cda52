package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// RealtimePublisher pushes order events onto the per-order realtime stream.
// Consumers subscribed to an order receive events in publish order and can
// replay missed ones from a known position.
type RealtimePublisher interface {
	// PublishOrderEvent appends an event to the order's stream
	PublishOrderEvent(ctx context.Context, orderID uuid.UUID, event shared.DomainEvent) error
}

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// InMemoryBus is a Bus for tests and single-process deployments without Redis.
// Stream IDs follow the "<seq>-0" shape so consumers see the same resume
// token format as with the Redis backend.
type InMemoryBus struct {
	mu      sync.RWMutex
	streams map[uuid.UUID][]StreamEvent
	nextSeq map[uuid.UUID]int64
	maxLen  int
}

// NewInMemoryBus creates an in-memory stream bus. maxLen of 0 means unbounded.
func NewInMemoryBus(maxLen int) *InMemoryBus {
	return &InMemoryBus{
		streams: make(map[uuid.UUID][]StreamEvent),
		nextSeq: make(map[uuid.UUID]int64),
		maxLen:  maxLen,
	}
}

// PublishOrderEvent appends an event to the order's stream
func (b *InMemoryBus) PublishOrderEvent(ctx context.Context, orderID uuid.UUID, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event for stream: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq[orderID]++
	entry := StreamEvent{
		StreamID:   fmt.Sprintf("%d-0", b.nextSeq[orderID]),
		EventID:    event.EventID(),
		EventType:  event.EventType(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	}

	stream := append(b.streams[orderID], entry)
	if b.maxLen > 0 && len(stream) > b.maxLen {
		stream = stream[len(stream)-b.maxLen:]
	}
	b.streams[orderID] = stream
	return nil
}

// Replay returns up to limit events strictly after afterID, oldest first
func (b *InMemoryBus) Replay(ctx context.Context, orderID uuid.UUID, afterID string, limit int64) ([]StreamEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	stream := b.streams[orderID]
	start := 0
	if afterID != "" {
		start = len(stream)
		for i, e := range stream {
			if e.StreamID == afterID {
				start = i + 1
				break
			}
		}
	}

	end := start + int(limit)
	if end > len(stream) {
		end = len(stream)
	}

	events := make([]StreamEvent, end-start)
	copy(events, stream[start:end])
	return events, nil
}

// Ensure InMemoryBus implements Bus
var _ Bus = (*InMemoryBus)(nil)

package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomline/backend/internal/domain/shared"
)

type streamTestEvent struct {
	shared.BaseDomainEvent
	Detail string `json:"detail"`
}

func newStreamTestEvent(eventType string, orderID uuid.UUID) *streamTestEvent {
	return &streamTestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", orderID),
		Detail:          "knitting at 40%",
	}
}

func TestInMemoryBus_PublishPreservesOrder(t *testing.T) {
	bus := NewInMemoryBus(0)
	ctx := context.Background()
	orderID := uuid.New()

	first := newStreamTestEvent("order.production_started", orderID)
	second := newStreamTestEvent("order.stage_advanced", orderID)
	third := newStreamTestEvent("order.stage_advanced", orderID)

	require.NoError(t, bus.PublishOrderEvent(ctx, orderID, first))
	require.NoError(t, bus.PublishOrderEvent(ctx, orderID, second))
	require.NoError(t, bus.PublishOrderEvent(ctx, orderID, third))

	events, err := bus.Replay(ctx, orderID, "", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, first.EventID(), events[0].EventID)
	assert.Equal(t, second.EventID(), events[1].EventID)
	assert.Equal(t, third.EventID(), events[2].EventID)
	assert.Contains(t, string(events[0].Payload), "knitting at 40%")
}

func TestInMemoryBus_ReplayAfterID(t *testing.T) {
	bus := NewInMemoryBus(0)
	ctx := context.Background()
	orderID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.PublishOrderEvent(ctx, orderID, newStreamTestEvent("order.stage_advanced", orderID)))
	}

	all, err := bus.Replay(ctx, orderID, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 5)

	// Resume from the second entry: only the later three come back
	resumed, err := bus.Replay(ctx, orderID, all[1].StreamID, 10)
	require.NoError(t, err)
	require.Len(t, resumed, 3)
	assert.Equal(t, all[2].StreamID, resumed[0].StreamID)
}

func TestInMemoryBus_ReplayRespectsLimit(t *testing.T) {
	bus := NewInMemoryBus(0)
	ctx := context.Background()
	orderID := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.PublishOrderEvent(ctx, orderID, newStreamTestEvent("order.stage_advanced", orderID)))
	}

	events, err := bus.Replay(ctx, orderID, "", 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestInMemoryBus_StreamsAreIsolatedPerOrder(t *testing.T) {
	bus := NewInMemoryBus(0)
	ctx := context.Background()
	orderA := uuid.New()
	orderB := uuid.New()

	require.NoError(t, bus.PublishOrderEvent(ctx, orderA, newStreamTestEvent("order.created", orderA)))
	require.NoError(t, bus.PublishOrderEvent(ctx, orderB, newStreamTestEvent("order.created", orderB)))
	require.NoError(t, bus.PublishOrderEvent(ctx, orderB, newStreamTestEvent("order.assigned", orderB)))

	eventsA, err := bus.Replay(ctx, orderA, "", 10)
	require.NoError(t, err)
	assert.Len(t, eventsA, 1)

	eventsB, err := bus.Replay(ctx, orderB, "", 10)
	require.NoError(t, err)
	assert.Len(t, eventsB, 2)
}

func TestInMemoryBus_MaxLenDropsOldest(t *testing.T) {
	bus := NewInMemoryBus(3)
	ctx := context.Background()
	orderID := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		event := newStreamTestEvent("order.stage_advanced", orderID)
		ids = append(ids, event.EventID())
		require.NoError(t, bus.PublishOrderEvent(ctx, orderID, event))
	}

	events, err := bus.Replay(ctx, orderID, "", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ids[2], events[0].EventID)
	assert.Equal(t, ids[4], events[2].EventID)
}

func TestInMemoryBus_ReplayUnknownOrderIsEmpty(t *testing.T) {
	bus := NewInMemoryBus(0)

	events, err := bus.Replay(context.Background(), uuid.New(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

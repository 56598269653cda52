package event

import (
	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/production"
	"github.com/loomline/backend/internal/domain/qc"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Order lifecycle events
	serializer.Register(order.EventTypeOrderCreated, &order.OrderCreatedEvent{})
	serializer.Register(order.EventTypeOrderAssigned, &order.OrderAssignedEvent{})
	serializer.Register(order.EventTypeOrderProductionStarted, &order.OrderProductionStartedEvent{})
	serializer.Register(order.EventTypeOrderStageAdvanced, &order.OrderStageAdvancedEvent{})
	serializer.Register(order.EventTypeOrderCompleted, &order.OrderCompletedEvent{})
	serializer.Register(order.EventTypeOrderCancelled, &order.OrderCancelledEvent{})

	// Supplier negotiation events
	serializer.Register(negotiation.EventTypeAssignmentOffered, &negotiation.AssignmentOfferedEvent{})
	serializer.Register(negotiation.EventTypeAssignmentAccepted, &negotiation.AssignmentAcceptedEvent{})
	serializer.Register(negotiation.EventTypeAssignmentRejected, &negotiation.AssignmentRejectedEvent{})
	serializer.Register(negotiation.EventTypeAssignmentCounterOffered, &negotiation.AssignmentCounterOfferedEvent{})
	serializer.Register(negotiation.EventTypeAssignmentCancelled, &negotiation.AssignmentCancelledEvent{})
	serializer.Register(negotiation.EventTypeAssignmentExpired, &negotiation.AssignmentExpiredEvent{})

	// Production tracking events
	serializer.Register(production.EventTypeUpdatePosted, &production.UpdatePostedEvent{})

	// Quality control events
	serializer.Register(qc.EventTypeCheckRecorded, &qc.CheckRecordedEvent{})
}

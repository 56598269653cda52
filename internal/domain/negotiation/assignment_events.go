package negotiation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/shared"
)

// Event type constants for the assignment aggregate
const (
	EventTypeAssignmentOffered        = "assignment.offered"
	EventTypeAssignmentAccepted       = "assignment.accepted"
	EventTypeAssignmentRejected       = "assignment.rejected"
	EventTypeAssignmentCounterOffered = "assignment.counter_offered"
	EventTypeAssignmentCancelled      = "assignment.cancelled"
	EventTypeAssignmentExpired        = "assignment.expired"
)

const aggregateTypeAssignment = "Assignment"

// AssignmentOfferedEvent is published when admin offers an order to a supplier
type AssignmentOfferedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	OfferedPrice decimal.Decimal `json:"offered_price"`
	OfferedBy    uuid.UUID       `json:"offered_by"`
}

// NewAssignmentOfferedEvent creates a new AssignmentOfferedEvent
func NewAssignmentOfferedEvent(a *Assignment) *AssignmentOfferedEvent {
	return &AssignmentOfferedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentOffered, aggregateTypeAssignment, a.ID),
		OrderID:         a.OrderID,
		SupplierID:      a.SupplierID,
		OfferedPrice:    a.OfferedPrice,
		OfferedBy:       a.OfferedBy,
	}
}

// AssignmentAcceptedEvent is published when an offer (or counter-offer) is accepted
type AssignmentAcceptedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	AgreedPrice decimal.Decimal `json:"agreed_price"`
	AcceptedBy  uuid.UUID       `json:"accepted_by"`
	OfferedBy   uuid.UUID       `json:"offered_by"`
}

// NewAssignmentAcceptedEvent creates a new AssignmentAcceptedEvent
func NewAssignmentAcceptedEvent(a *Assignment, acceptedBy uuid.UUID) *AssignmentAcceptedEvent {
	return &AssignmentAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentAccepted, aggregateTypeAssignment, a.ID),
		OrderID:         a.OrderID,
		SupplierID:      a.SupplierID,
		AgreedPrice:     a.AgreedPrice(),
		AcceptedBy:      acceptedBy,
		OfferedBy:       a.OfferedBy,
	}
}

// AssignmentRejectedEvent is published when an offer or counter-offer is rejected
type AssignmentRejectedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	OfferedBy  uuid.UUID `json:"offered_by"`
	Reason     string    `json:"reason"`
}

// NewAssignmentRejectedEvent creates a new AssignmentRejectedEvent
func NewAssignmentRejectedEvent(a *Assignment, rejectedBy uuid.UUID, reason string) *AssignmentRejectedEvent {
	return &AssignmentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentRejected, aggregateTypeAssignment, a.ID),
		OrderID:         a.OrderID,
		SupplierID:      a.SupplierID,
		RejectedBy:      rejectedBy,
		OfferedBy:       a.OfferedBy,
		Reason:          reason,
	}
}

// AssignmentCounterOfferedEvent is published when the supplier counters with a new price
type AssignmentCounterOfferedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID       `json:"order_id"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	OfferedPrice decimal.Decimal `json:"offered_price"`
	CounterPrice decimal.Decimal `json:"counter_price"`
	OfferedBy    uuid.UUID       `json:"offered_by"`
	Notes        string          `json:"notes"`
}

// NewAssignmentCounterOfferedEvent creates a new AssignmentCounterOfferedEvent
func NewAssignmentCounterOfferedEvent(a *Assignment, counterPrice decimal.Decimal, notes string) *AssignmentCounterOfferedEvent {
	return &AssignmentCounterOfferedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentCounterOffered, aggregateTypeAssignment, a.ID),
		OrderID:         a.OrderID,
		SupplierID:      a.SupplierID,
		OfferedPrice:    a.OfferedPrice,
		CounterPrice:    counterPrice,
		OfferedBy:       a.OfferedBy,
		Notes:           notes,
	}
}

// AssignmentCancelledEvent is published when admin withdraws an open offer
type AssignmentCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Reason     string    `json:"reason"`
}

// NewAssignmentCancelledEvent creates a new AssignmentCancelledEvent
func NewAssignmentCancelledEvent(a *Assignment, reason string) *AssignmentCancelledEvent {
	return &AssignmentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentCancelled, aggregateTypeAssignment, a.ID),
		OrderID:         a.OrderID,
		SupplierID:      a.SupplierID,
		Reason:          reason,
	}
}

// AssignmentExpiredEvent is published when an open offer passes its deadline
type AssignmentExpiredEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID `json:"order_id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	OfferedBy  uuid.UUID `json:"offered_by"`
}

// NewAssignmentExpiredEvent creates a new AssignmentExpiredEvent
func NewAssignmentExpiredEvent(a *Assignment) *AssignmentExpiredEvent {
	return &AssignmentExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentExpired, aggregateTypeAssignment, a.ID),
		OrderID:         a.OrderID,
		SupplierID:      a.SupplierID,
		OfferedBy:       a.OfferedBy,
	}
}

package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/shared"
)

// Event type constants for the order aggregate
const (
	EventTypeOrderCreated           = "order.created"
	EventTypeOrderAssigned          = "order.assigned"
	EventTypeOrderProductionStarted = "order.production_started"
	EventTypeOrderStageAdvanced     = "order.stage_advanced"
	EventTypeOrderCompleted         = "order.completed"
	EventTypeOrderCancelled         = "order.cancelled"
)

const aggregateTypeOrder = "Order"

// OrderCreatedEvent is published when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	BuyerPrice  decimal.Decimal `json:"buyer_price"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		BuyerPrice:      o.BuyerPrice,
	}
}

// OrderAssignedEvent is published when a supplier accepts and the order
// moves to assigned with an agreed price
type OrderAssignedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	BuyerID       uuid.UUID       `json:"buyer_id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	SupplierPrice decimal.Decimal `json:"supplier_price"`
	AdminMargin   decimal.Decimal `json:"admin_margin"`
}

// NewOrderAssignedEvent creates a new OrderAssignedEvent
func NewOrderAssignedEvent(o *Order) *OrderAssignedEvent {
	e := &OrderAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAssigned, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		AdminMargin:     o.AdminMargin,
	}
	if o.SupplierID != nil {
		e.SupplierID = *o.SupplierID
	}
	if o.SupplierPrice != nil {
		e.SupplierPrice = *o.SupplierPrice
	}
	return e
}

// OrderProductionStartedEvent is published on the first production update
type OrderProductionStartedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	Stage       Stage     `json:"stage"`
}

// NewOrderProductionStartedEvent creates a new OrderProductionStartedEvent
func NewOrderProductionStartedEvent(o *Order) *OrderProductionStartedEvent {
	e := &OrderProductionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderProductionStarted, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		Stage:           o.CurrentStage,
	}
	if o.SupplierID != nil {
		e.SupplierID = *o.SupplierID
	}
	return e
}

// OrderStageAdvancedEvent is published each time the current stage moves forward
type OrderStageAdvancedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	FromStage   Stage     `json:"from_stage"`
	ToStage     Stage     `json:"to_stage"`
	Percentage  int       `json:"percentage"`
}

// NewOrderStageAdvancedEvent creates a new OrderStageAdvancedEvent
func NewOrderStageAdvancedEvent(o *Order, from, to Stage) *OrderStageAdvancedEvent {
	return &OrderStageAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStageAdvanced, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		FromStage:       from,
		ToStage:         to,
		Percentage:      o.StageProgress.Get(to),
	}
}

// OrderCompletedEvent is published when an order reaches completed
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	SupplierID  uuid.UUID `json:"supplier_id"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(o *Order) *OrderCompletedEvent {
	e := &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
	}
	if o.SupplierID != nil {
		e.SupplierID = *o.SupplierID
	}
	return e
}

// OrderCancelledEvent is published when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	Reason      string    `json:"reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		Reason:          reason,
	}
}

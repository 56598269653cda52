package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/pricing"
	"github.com/loomline/backend/internal/domain/shared"
)

// WorkflowStatus represents where an order sits in its lifecycle
type WorkflowStatus string

const (
	WorkflowUnassigned   WorkflowStatus = "unassigned"
	WorkflowAssigned     WorkflowStatus = "assigned"
	WorkflowInProduction WorkflowStatus = "in_production"
	WorkflowCompleted    WorkflowStatus = "completed"
	WorkflowCancelled    WorkflowStatus = "cancelled"
)

// IsValid checks if the status is a valid WorkflowStatus
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowUnassigned, WorkflowAssigned, WorkflowInProduction, WorkflowCompleted, WorkflowCancelled:
		return true
	}
	return false
}

// String returns the string representation of WorkflowStatus
func (s WorkflowStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s WorkflowStatus) CanTransitionTo(target WorkflowStatus) bool {
	switch s {
	case WorkflowUnassigned:
		return target == WorkflowAssigned || target == WorkflowCancelled
	case WorkflowAssigned:
		return target == WorkflowInProduction || target == WorkflowCancelled
	case WorkflowInProduction:
		return target == WorkflowCompleted
	case WorkflowCompleted, WorkflowCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus tracks payment bookkeeping on the order
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// Order is the central aggregate of the marketplace: one buyer's garment
// order from quote acceptance through supplier negotiation, production and
// completion. AdminMargin and MarginPercentage are derived fields; they are
// recomputed through pricing.Recompute on every price change, never authored
// directly, and stay zero while SupplierPrice is nil.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber         string
	BuyerID             uuid.UUID
	SupplierID          *uuid.UUID
	BuyerPrice          decimal.Decimal
	SupplierPrice       *decimal.Decimal
	AdminMargin         decimal.Decimal
	MarginPercentage    decimal.Decimal
	WorkflowStatus      WorkflowStatus
	PaymentStatus       PaymentStatus
	TargetDate          *time.Time
	CurrentStage        Stage
	StageProgress       StageProgress
	SpecialInstructions string
	AdminNotes          string
	AssignedAt          *time.Time
	CancelledAt         *time.Time
	CancelReason        string
}

// NewOrder creates a new order for a buyer
func NewOrder(orderNumber string, buyerID uuid.UUID, buyerPrice decimal.Decimal, targetDate *time.Time, instructions string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if buyerPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidPrice, "Buyer price must be positive")
	}

	o := &Order{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		OrderNumber:         orderNumber,
		BuyerID:             buyerID,
		BuyerPrice:          buyerPrice,
		AdminMargin:         decimal.Zero,
		MarginPercentage:    decimal.Zero,
		WorkflowStatus:      WorkflowUnassigned,
		PaymentStatus:       PaymentPending,
		TargetDate:          targetDate,
		CurrentStage:        StageYarnReceived,
		StageProgress:       make(StageProgress),
		SpecialInstructions: instructions,
	}

	o.AddDomainEvent(NewOrderCreatedEvent(o))

	return o, nil
}

// AttachSupplier records the supplier a new assignment names. The workflow
// status does not change here: the order becomes assigned only when the
// supplier accepts. SupplierID is set whenever an assignment exists, and a
// later rejection deliberately does not clear it, preserving the audit trail
// until admin explicitly reassigns.
func (o *Order) AttachSupplier(supplierID uuid.UUID) error {
	if supplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if o.WorkflowStatus != WorkflowUnassigned {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot attach supplier to order in %s status", o.WorkflowStatus))
	}

	o.SupplierID = &supplierID
	o.UpdatedAt = time.Now()

	return nil
}

// ApplyAcceptedPrice sets the supplier price agreed through negotiation,
// recomputes the derived margin and moves the order to assigned. Called when
// the supplier accepts an offer (or admin accepts a counter-offer); the price
// change and the derived fields persist in the same transaction.
func (o *Order) ApplyAcceptedPrice(supplierPrice decimal.Decimal) error {
	if o.SupplierID == nil {
		return shared.NewDomainError(shared.ErrCodeNoActiveSupplier, "Order has no supplier attached")
	}
	if supplierPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.ErrCodeInvalidPrice, "Supplier price must be positive")
	}
	if !o.WorkflowStatus.CanTransitionTo(WorkflowAssigned) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot assign order in %s status", o.WorkflowStatus))
	}

	now := time.Now()
	o.SupplierPrice = &supplierPrice
	o.recomputeMargin()
	o.WorkflowStatus = WorkflowAssigned
	if o.AssignedAt == nil {
		o.AssignedAt = &now
	}
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderAssignedEvent(o))

	return nil
}

// UpdateBuyerPrice changes the buyer price and recomputes the derived margin.
// Admin-only; allowed before production starts.
func (o *Order) UpdateBuyerPrice(buyerPrice decimal.Decimal) error {
	if buyerPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.ErrCodeInvalidPrice, "Buyer price must be positive")
	}
	if o.WorkflowStatus == WorkflowInProduction || o.WorkflowStatus == WorkflowCompleted || o.WorkflowStatus == WorkflowCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reprice order in %s status", o.WorkflowStatus))
	}

	o.BuyerPrice = buyerPrice
	o.recomputeMargin()
	o.UpdatedAt = time.Now()

	return nil
}

// RecordProgress applies one production report to the stage state machine:
//   - a stage earlier than the current one fails with OUT_OF_ORDER_STAGE
//   - the current stage keeps the max of old and new percentage; a lower,
//     racing report is ignored rather than rejected
//   - a later stage advances the order, auto-completing any skipped-over
//     stages at 100% since progress reporting is lossy
//
// The first report moves an assigned order into production.
func (o *Order) RecordProgress(stage Stage, percentage int) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", fmt.Sprintf("Unknown production stage %q", stage))
	}
	if percentage < 0 || percentage > 100 {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Completion percentage must be between 0 and 100")
	}
	if o.WorkflowStatus != WorkflowAssigned && o.WorkflowStatus != WorkflowInProduction {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record production progress in %s status", o.WorkflowStatus))
	}

	current := o.CurrentStage.Index()
	target := stage.Index()

	if target < current {
		return shared.NewDomainError(shared.ErrCodeOutOfOrderStage,
			fmt.Sprintf("Stage %s is earlier than current stage %s; stages may not regress", stage, o.CurrentStage))
	}

	if o.StageProgress == nil {
		o.StageProgress = make(StageProgress)
	}

	previousStage := o.CurrentStage
	switch {
	case target == current:
		if percentage > o.StageProgress[stage] {
			o.StageProgress[stage] = percentage
		}
	default:
		for i := current + 1; i < target; i++ {
			o.StageProgress[stageSequence[i]] = 100
		}
		o.CurrentStage = stage
		if percentage > o.StageProgress[stage] {
			o.StageProgress[stage] = percentage
		}
	}

	now := time.Now()
	o.UpdatedAt = now

	if o.WorkflowStatus == WorkflowAssigned {
		o.WorkflowStatus = WorkflowInProduction
		o.AddDomainEvent(NewOrderProductionStartedEvent(o))
	}
	if o.CurrentStage != previousStage {
		o.AddDomainEvent(NewOrderStageAdvancedEvent(o, previousStage, o.CurrentStage))
	}

	return nil
}

// StageStatusOf classifies a stage relative to the current position:
// complete below the current stage, in_progress at it once any percentage is
// reported, pending otherwise.
func (o *Order) StageStatusOf(stage Stage) StageStatus {
	if stage.Index() < o.CurrentStage.Index() {
		return StageStatusComplete
	}
	if stage == o.CurrentStage && o.StageProgress.Get(stage) > 0 {
		return StageStatusInProgress
	}
	return StageStatusPending
}

// ReadyToComplete reports whether production has reached its terminal signal:
// ready_to_ship at 100%.
func (o *Order) ReadyToComplete() bool {
	return o.CurrentStage == StageReadyToShip && o.StageProgress.Get(StageReadyToShip) == 100
}

// Complete marks the order as completed. Legal only once production has
// reached ready_to_ship at 100%.
func (o *Order) Complete() error {
	if !o.WorkflowStatus.CanTransitionTo(WorkflowCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.WorkflowStatus))
	}
	if !o.ReadyToComplete() {
		return shared.NewDomainError(shared.ErrCodeNotReadyToShip,
			fmt.Sprintf("Order is at %s (%d%%); completion requires ready_to_ship at 100%%", o.CurrentStage, o.StageProgress.Get(o.CurrentStage)))
	}

	now := time.Now()
	o.WorkflowStatus = WorkflowCompleted
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// Cancel cancels the order. Allowed until production starts.
func (o *Order) Cancel(reason string) error {
	if !o.WorkflowStatus.CanTransitionTo(WorkflowCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.WorkflowStatus))
	}
	if reason == "" {
		return shared.NewDomainError(shared.ErrCodeMissingReason, "Cancel reason is required")
	}

	now := time.Now()
	o.WorkflowStatus = WorkflowCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// SetPaymentStatus updates the payment bookkeeping field
func (o *Order) SetPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Unknown payment status %q", status))
	}
	o.PaymentStatus = status
	o.UpdatedAt = time.Now()
	return nil
}

// SetAdminNotes sets the internal admin notes
func (o *Order) SetAdminNotes(notes string) {
	o.AdminNotes = notes
	o.UpdatedAt = time.Now()
}

// recomputeMargin refreshes the derived margin fields from the current prices
func (o *Order) recomputeMargin() {
	m := pricing.Recompute(o.BuyerPrice, o.SupplierPrice)
	o.AdminMargin = m.Amount
	o.MarginPercentage = m.Percentage
}

// IsUnassigned returns true if no supplier has accepted the order yet
func (o *Order) IsUnassigned() bool {
	return o.WorkflowStatus == WorkflowUnassigned
}

// IsInProduction returns true once production updates have started arriving
func (o *Order) IsInProduction() bool {
	return o.WorkflowStatus == WorkflowInProduction
}

// IsTerminal returns true for completed or cancelled orders
func (o *Order) IsTerminal() bool {
	return o.WorkflowStatus == WorkflowCompleted || o.WorkflowStatus == WorkflowCancelled
}

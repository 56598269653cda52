package negotiation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/shared"
)

// AssignmentStatus represents the state of one offer round with a supplier
type AssignmentStatus string

const (
	StatusPending        AssignmentStatus = "pending"
	StatusAccepted       AssignmentStatus = "accepted"
	StatusRejected       AssignmentStatus = "rejected"
	StatusCounterOffered AssignmentStatus = "counter_offered"
	StatusCancelled      AssignmentStatus = "cancelled"
	StatusExpired        AssignmentStatus = "expired"
	StatusSuperseded     AssignmentStatus = "superseded"
)

// IsValid checks if the status is a valid AssignmentStatus
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCounterOffered,
		StatusCancelled, StatusExpired, StatusSuperseded:
		return true
	}
	return false
}

// String returns the string representation of AssignmentStatus
func (s AssignmentStatus) String() string {
	return string(s)
}

// IsOpen reports whether the assignment still awaits a decision from either
// side. At most one open assignment may exist per order at any time.
func (s AssignmentStatus) IsOpen() bool {
	return s == StatusPending || s == StatusCounterOffered
}

// IsTerminal reports whether the assignment can never change state again
func (s AssignmentStatus) IsTerminal() bool {
	return s.IsValid() && !s.IsOpen()
}

// CanTransitionTo checks if the status can transition to the target status
func (s AssignmentStatus) CanTransitionTo(target AssignmentStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusAccepted || target == StatusRejected ||
			target == StatusCounterOffered || target == StatusCancelled ||
			target == StatusExpired || target == StatusSuperseded
	case StatusCounterOffered:
		// accepted and rejected are reachable only from pending; admin
		// resolves a counter by re-offering (supersede) or cancelling
		return target == StatusCancelled || target == StatusExpired ||
			target == StatusSuperseded
	}
	return false // Terminal states
}

// Assignment is one negotiation round between admin and a supplier over a
// single order. Re-offering after a rejection or counter creates a fresh
// Assignment and marks the old one superseded, so the full haggling history
// stays queryable row by row.
type Assignment struct {
	shared.BaseAggregateRoot
	OrderID       uuid.UUID
	SupplierID    uuid.UUID
	OfferedPrice  decimal.Decimal
	CounterPrice  *decimal.Decimal
	Status        AssignmentStatus
	OfferedBy     uuid.UUID
	Notes         string
	ResponseNotes string
	RespondedAt   *time.Time
	ExpiresAt     *time.Time
	SupersededBy  *uuid.UUID
}

// NewAssignment creates a pending offer from admin to a supplier
func NewAssignment(orderID, supplierID uuid.UUID, offeredPrice decimal.Decimal, offeredBy uuid.UUID, notes string, expiresAt *time.Time) (*Assignment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if offeredPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidPrice, "Offered price must be positive")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidPrice, "Expiry must be in the future")
	}

	a := &Assignment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		SupplierID:        supplierID,
		OfferedPrice:      offeredPrice,
		Status:            StatusPending,
		OfferedBy:         offeredBy,
		Notes:             notes,
		ExpiresAt:         expiresAt,
	}

	a.AddDomainEvent(NewAssignmentOfferedEvent(a))

	return a, nil
}

// AgreedPrice returns the price the assignment settles at when accepted:
// the counter price if the supplier countered, otherwise the original offer.
func (a *Assignment) AgreedPrice() decimal.Decimal {
	if a.CounterPrice != nil {
		return *a.CounterPrice
	}
	return a.OfferedPrice
}

// Accept records the supplier accepting a pending offer at the offered
// price. Acceptance is reachable only from pending; a counter-offer settles
// through AcceptCounter instead.
func (a *Assignment) Accept(actor identity.Actor) error {
	if a.Status != StatusPending {
		return a.invalidTransition(StatusAccepted)
	}
	if err := a.requireOwningSupplier(actor); err != nil {
		return err
	}

	now := time.Now()
	a.Status = StatusAccepted
	a.RespondedAt = &now
	a.UpdatedAt = now

	a.AddDomainEvent(NewAssignmentAcceptedEvent(a, actor.UserID))

	return nil
}

// AcceptCounter records admin agreeing to the supplier's counter price. The
// countered round is superseded and a fresh round at the counter price runs
// a pending-to-accepted cycle in its place, so acceptance only ever happens
// from pending and the haggling history keeps one row per round.
func (a *Assignment) AcceptCounter(actor identity.Actor) (*Assignment, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only admin can accept a counter-offer")
	}
	if a.Status != StatusCounterOffered {
		return nil, a.invalidTransition(StatusAccepted)
	}

	replacement, err := NewAssignment(a.OrderID, a.SupplierID, *a.CounterPrice, actor.UserID, a.ResponseNotes, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	replacement.Status = StatusAccepted
	replacement.RespondedAt = &now
	replacement.UpdatedAt = now
	replacement.AddDomainEvent(NewAssignmentAcceptedEvent(replacement, actor.UserID))

	if err := a.Supersede(replacement.ID); err != nil {
		return nil, err
	}

	return replacement, nil
}

// Reject records the supplier declining a pending offer. Rejection is
// reachable only from pending; admin resolves an unwanted counter by
// cancelling or re-offering. A reason is always required.
func (a *Assignment) Reject(actor identity.Actor, reason string) error {
	if reason == "" {
		return shared.NewDomainError(shared.ErrCodeMissingReason, "Rejection reason is required")
	}

	if a.Status != StatusPending {
		return a.invalidTransition(StatusRejected)
	}
	if err := a.requireOwningSupplier(actor); err != nil {
		return err
	}

	now := time.Now()
	a.Status = StatusRejected
	a.ResponseNotes = reason
	a.RespondedAt = &now
	a.UpdatedAt = now

	a.AddDomainEvent(NewAssignmentRejectedEvent(a, actor.UserID, reason))

	return nil
}

// CounterOffer records the supplier proposing a different price. Notes
// explaining the counter are mandatory so admin can evaluate it.
func (a *Assignment) CounterOffer(actor identity.Actor, counterPrice decimal.Decimal, notes string) error {
	if err := a.requireOwningSupplier(actor); err != nil {
		return err
	}
	if a.Status != StatusPending {
		return a.invalidTransition(StatusCounterOffered)
	}
	if counterPrice.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.ErrCodeInvalidPrice, "Counter price must be positive")
	}
	if notes == "" {
		return shared.NewDomainError(shared.ErrCodeMissingNotes, "Counter-offer notes are required")
	}

	now := time.Now()
	a.CounterPrice = &counterPrice
	a.Status = StatusCounterOffered
	a.ResponseNotes = notes
	a.RespondedAt = &now
	a.UpdatedAt = now

	a.AddDomainEvent(NewAssignmentCounterOfferedEvent(a, counterPrice, notes))

	return nil
}

// Cancel withdraws an open offer. Admin only.
func (a *Assignment) Cancel(actor identity.Actor, reason string) error {
	if !actor.IsAdmin() {
		return shared.NewDomainError("FORBIDDEN", "Only admin can cancel an assignment")
	}
	if !a.Status.CanTransitionTo(StatusCancelled) {
		return a.invalidTransition(StatusCancelled)
	}

	now := time.Now()
	a.Status = StatusCancelled
	a.ResponseNotes = reason
	a.UpdatedAt = now

	a.AddDomainEvent(NewAssignmentCancelledEvent(a, reason))

	return nil
}

// Supersede marks an open assignment replaced by a newer one for the same
// order. Called when admin re-offers to the same or a different supplier.
func (a *Assignment) Supersede(replacementID uuid.UUID) error {
	if !a.Status.CanTransitionTo(StatusSuperseded) {
		return a.invalidTransition(StatusSuperseded)
	}

	now := time.Now()
	a.Status = StatusSuperseded
	a.SupersededBy = &replacementID
	a.UpdatedAt = now

	return nil
}

// Expire times out an open assignment whose deadline has passed
func (a *Assignment) Expire(now time.Time) error {
	if !a.Status.CanTransitionTo(StatusExpired) {
		return a.invalidTransition(StatusExpired)
	}
	if a.ExpiresAt == nil || now.Before(*a.ExpiresAt) {
		return shared.NewDomainError("NOT_EXPIRED", "Assignment has not reached its expiry deadline")
	}

	a.Status = StatusExpired
	a.UpdatedAt = now

	a.AddDomainEvent(NewAssignmentExpiredEvent(a))

	return nil
}

// IsOpen reports whether the assignment still awaits a decision
func (a *Assignment) IsOpen() bool {
	return a.Status.IsOpen()
}

func (a *Assignment) requireOwningSupplier(actor identity.Actor) error {
	if !actor.IsSupplier() || actor.UserID != a.SupplierID {
		return shared.NewDomainError("FORBIDDEN", "Only the offered supplier can respond to this assignment")
	}
	return nil
}

func (a *Assignment) invalidTransition(target AssignmentStatus) *shared.DomainError {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Cannot move assignment from %s to %s", a.Status, target))
}

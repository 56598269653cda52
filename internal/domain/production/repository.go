package production

import (
	"context"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// Repository defines the interface for production update persistence.
// The store is append-only: there is no update or delete.
type Repository interface {
	// FindByID finds a production update by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Update, error)

	// FindByOrder returns updates for an order ordered by sequence ascending
	FindByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]Update, error)

	// FindByOrderSince returns updates for an order with sequence greater
	// than afterSequence, ordered ascending. Used for replay catch-up.
	FindByOrderSince(ctx context.Context, orderID uuid.UUID, afterSequence int64) ([]Update, error)

	// Append persists a new update, assigning the next per-order sequence
	// number atomically. The assigned sequence is written back to u.
	Append(ctx context.Context, u *Update) error

	// AppendWithEvents persists a new update and its domain events in one
	// transaction through the outbox. makeEvents runs after the sequence is
	// assigned, so the events can carry the final sequence number.
	AppendWithEvents(ctx context.Context, u *Update, makeEvents func(*Update) []shared.DomainEvent) error

	// CountByOrder counts updates for an order
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

package qc

import (
	"context"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/shared"
)

// Repository defines the interface for quality check persistence.
// Checks are append-only.
type Repository interface {
	// FindByID finds a check by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Check, error)

	// FindByOrder returns all checks for an order, newest first
	FindByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]Check, error)

	// FindLatestByOrder returns the most recent check for an order, or
	// NOT_FOUND if none was ever recorded
	FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*Check, error)

	// FindLatestByOrderAndStage returns the most recent check for an order
	// at the given stage, or NOT_FOUND if that stage was never inspected.
	// The advancement and completion gates consult this one.
	FindLatestByOrderAndStage(ctx context.Context, orderID uuid.UUID, stage order.Stage) (*Check, error)

	// Save persists a new check
	Save(ctx context.Context, c *Check) error

	// SaveWithEvents persists a new check and its domain events in one
	// transaction through the outbox
	SaveWithEvents(ctx context.Context, c *Check, events []shared.DomainEvent) error

	// CountByOrder counts checks for an order
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// Repository defines the interface for assignment persistence
type Repository interface {
	// FindByID finds an assignment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Assignment, error)

	// FindOpenByOrder finds the single open (pending or counter_offered)
	// assignment for an order, or returns NOT_FOUND
	FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*Assignment, error)

	// FindByOrder returns the full assignment history for an order,
	// newest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Assignment, error)

	// FindBySupplier finds assignments offered to a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Assignment, error)

	// FindPendingBySupplier finds open assignments awaiting a supplier's response
	FindPendingBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Assignment, error)

	// FindExpiredBefore finds open assignments whose deadline passed before the cutoff
	FindExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]Assignment, error)

	// Save creates or updates an assignment
	Save(ctx context.Context, a *Assignment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, a *Assignment) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, a *Assignment, events []shared.DomainEvent) error

	// CountBySupplier counts assignments for a supplier
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
}

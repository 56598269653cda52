package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByBuyer finds orders placed by a buyer
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindBySupplier finds orders currently attached to a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByWorkflowStatus finds orders by workflow status
	FindByWorkflowStatus(ctx context.Context, status WorkflowStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, o *Order, events []shared.DomainEvent) error

	// Delete deletes an order (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts orders with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByWorkflowStatus counts orders by workflow status
	CountByWorkflowStatus(ctx context.Context, status WorkflowStatus) (int64, error)

	// CountByBuyer counts orders for a buyer
	CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber generates the next unique order number (ORD-YYYYMMDD-NNNN)
	GenerateOrderNumber(ctx context.Context) (string, error)
}

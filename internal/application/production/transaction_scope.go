package production

import (
	"context"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/production"
)

// TransactionScope provides transactional access to the repositories a
// production update touches: the order's stage state and the append-only
// update log commit together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// UpdateRepo returns the production update repository scoped to the current transaction
	UpdateRepo() production.Repository
}

// NoOpTransactionScope is a transaction scope without real transactions,
// for tests.
type NoOpTransactionScope struct {
	orderRepo  order.Repository
	updateRepo production.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(orderRepo order.Repository, updateRepo production.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:  orderRepo,
		updateRepo: updateRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// UpdateRepo returns the production update repository.
func (s *NoOpTransactionScope) UpdateRepo() production.Repository {
	return s.updateRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

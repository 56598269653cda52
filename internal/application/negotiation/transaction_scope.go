package negotiation

import (
	"context"

	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories a
// negotiation decision touches. Accepting an offer must write the assignment,
// the order and the outbox rows in one database transaction; the scope is
// what makes that atomic.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// AssignmentRepo returns the assignment repository scoped to the current transaction
	AssignmentRepo() negotiation.Repository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful in tests.
type NoOpTransactionScope struct {
	orderRepo      order.Repository
	assignmentRepo negotiation.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(orderRepo order.Repository, assignmentRepo negotiation.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:      orderRepo,
		assignmentRepo: assignmentRepo,
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

// AssignmentRepo returns the assignment repository.
func (s *NoOpTransactionScope) AssignmentRepo() negotiation.Repository {
	return s.assignmentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

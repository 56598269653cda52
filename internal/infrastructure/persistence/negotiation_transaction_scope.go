package persistence

import (
	"context"

	"gorm.io/gorm"

	appneg "github.com/loomline/backend/internal/application/negotiation"
	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/shared"
)

// GormNegotiationTransactionScope implements the negotiation TransactionScope
// using GORM transactions. The order mutation and the assignment round commit
// or roll back together.
type GormNegotiationTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormNegotiationTransactionScope creates a new GormNegotiationTransactionScope.
// The outbox saver is handed down to the transaction-scoped repositories so
// events emitted inside the scope still go through the outbox.
func NewGormNegotiationTransactionScope(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormNegotiationTransactionScope {
	return &GormNegotiationTransactionScope{db: db, outboxSaver: outboxSaver}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormNegotiationTransactionScope) Execute(ctx context.Context, fn func(repos appneg.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &negotiationTransactionalRepositories{tx: tx, outboxSaver: s.outboxSaver}
		return fn(repos)
	})
}

// negotiationTransactionalRepositories provides access to the repositories within a transaction.
type negotiationTransactionalRepositories struct {
	tx          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *negotiationTransactionalRepositories) OrderRepo() order.Repository {
	repo := NewGormOrderRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

// AssignmentRepo returns the assignment repository scoped to the current transaction.
func (r *negotiationTransactionalRepositories) AssignmentRepo() negotiation.Repository {
	repo := NewGormAssignmentRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

// Ensure GormNegotiationTransactionScope implements TransactionScope
var _ appneg.TransactionScope = (*GormNegotiationTransactionScope)(nil)

// Ensure negotiationTransactionalRepositories implements TransactionalRepositories
var _ appneg.TransactionalRepositories = (*negotiationTransactionalRepositories)(nil)

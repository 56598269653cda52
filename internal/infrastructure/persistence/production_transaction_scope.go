package persistence

import (
	"context"

	"gorm.io/gorm"

	appprod "github.com/loomline/backend/internal/application/production"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/production"
	"github.com/loomline/backend/internal/domain/shared"
)

// GormProductionTransactionScope implements the production TransactionScope
// using GORM transactions. The order's stage state and the appended update
// commit or roll back together.
type GormProductionTransactionScope struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// NewGormProductionTransactionScope creates a new GormProductionTransactionScope.
func NewGormProductionTransactionScope(db *gorm.DB, outboxSaver shared.OutboxEventSaver) *GormProductionTransactionScope {
	return &GormProductionTransactionScope{db: db, outboxSaver: outboxSaver}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormProductionTransactionScope) Execute(ctx context.Context, fn func(repos appprod.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &productionTransactionalRepositories{tx: tx, outboxSaver: s.outboxSaver}
		return fn(repos)
	})
}

// productionTransactionalRepositories provides access to the repositories within a transaction.
type productionTransactionalRepositories struct {
	tx          *gorm.DB
	outboxSaver shared.OutboxEventSaver
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *productionTransactionalRepositories) OrderRepo() order.Repository {
	repo := NewGormOrderRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

// UpdateRepo returns the production update repository scoped to the current transaction.
func (r *productionTransactionalRepositories) UpdateRepo() production.Repository {
	repo := NewGormProductionUpdateRepository(r.tx)
	repo.SetOutboxEventSaver(r.outboxSaver)
	return repo
}

// Ensure GormProductionTransactionScope implements TransactionScope
var _ appprod.TransactionScope = (*GormProductionTransactionScope)(nil)

// Ensure productionTransactionalRepositories implements TransactionalRepositories
var _ appprod.TransactionalRepositories = (*productionTransactionalRepositories)(nil)

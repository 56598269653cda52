package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomline/backend/internal/domain/production"
	"github.com/loomline/backend/internal/domain/shared"
	"github.com/loomline/backend/internal/infrastructure/persistence/models"
)

// GormProductionUpdateRepository implements production.Repository using GORM.
// The log is append-only: rows are never updated or deleted, and each row gets
// a per-order sequence number assigned inside the append transaction.
type GormProductionUpdateRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormProductionUpdateRepository creates a new GormProductionUpdateRepository
func NewGormProductionUpdateRepository(db *gorm.DB) *GormProductionUpdateRepository {
	return &GormProductionUpdateRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormProductionUpdateRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a production update by its ID
func (r *GormProductionUpdateRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.Update, error) {
	var model models.ProductionUpdateModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns updates for an order in sequence order
func (r *GormProductionUpdateRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]production.Update, error) {
	var updateModels []models.ProductionUpdateModel
	query := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("sequence ASC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&updateModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(updateModels), nil
}

// FindByOrderSince returns updates for an order with a sequence number greater
// than afterSequence, in sequence order. This backs catch-up replay.
func (r *GormProductionUpdateRepository) FindByOrderSince(ctx context.Context, orderID uuid.UUID, afterSequence int64) ([]production.Update, error) {
	var updateModels []models.ProductionUpdateModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND sequence > ?", orderID, afterSequence).
		Order("sequence ASC").
		Find(&updateModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(updateModels), nil
}

// Append inserts a new update, assigning the next per-order sequence number
func (r *GormProductionUpdateRepository) Append(ctx context.Context, u *production.Update) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.appendTx(tx, u)
	})
}

// AppendWithEvents inserts a new update and persists its domain events
// atomically. makeEvents runs after the sequence number is assigned so the
// events carry it.
func (r *GormProductionUpdateRepository) AppendWithEvents(ctx context.Context, u *production.Update, makeEvents func(*production.Update) []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.appendTx(tx, u); err != nil {
			return err
		}

		if r.outboxSaver != nil && makeEvents != nil {
			events := makeEvents(u)
			if len(events) > 0 {
				if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
					return fmt.Errorf("failed to save events to outbox: %w", err)
				}
			}
		}

		return nil
	})
}

// appendTx assigns the next sequence and inserts the row inside an open
// transaction. The unique (order_id, sequence) index turns a concurrent
// append for the same order into an insert conflict, which aborts the
// transaction instead of producing a duplicate sequence.
func (r *GormProductionUpdateRepository) appendTx(tx *gorm.DB, u *production.Update) error {
	var maxSequence int64
	if err := tx.Model(&models.ProductionUpdateModel{}).
		Where("order_id = ?", u.OrderID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&maxSequence).Error; err != nil {
		return err
	}

	u.Sequence = maxSequence + 1

	return tx.Create(models.ProductionUpdateModelFromDomain(u)).Error
}

// CountByOrder counts updates for an order
func (r *GormProductionUpdateRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductionUpdateModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProductionUpdateRepository) toDomainSlice(updateModels []models.ProductionUpdateModel) []production.Update {
	updates := make([]production.Update, len(updateModels))
	for i, model := range updateModels {
		updates[i] = *model.ToDomain()
	}
	return updates
}

// Ensure GormProductionUpdateRepository implements production.Repository
var _ production.Repository = (*GormProductionUpdateRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/domain/shared"
	"github.com/loomline/backend/internal/infrastructure/persistence/models"
)

// GormQCCheckRepository implements qc.Repository using GORM. Checks are
// append-only; there is no update path.
type GormQCCheckRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormQCCheckRepository creates a new GormQCCheckRepository
func NewGormQCCheckRepository(db *gorm.DB) *GormQCCheckRepository {
	return &GormQCCheckRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormQCCheckRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a check by its ID
func (r *GormQCCheckRepository) FindByID(ctx context.Context, id uuid.UUID) (*qc.Check, error) {
	var model models.QCCheckModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns all checks for an order, newest first unless the
// filter asks for another whitelisted column
func (r *GormQCCheckRepository) FindByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]qc.Check, error) {
	sortField := ValidateSortField(filter.OrderBy, QCCheckSortFields, "checked_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var checkModels []models.QCCheckModel
	query := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order(sortField + " " + sortOrder)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&checkModels).Error; err != nil {
		return nil, err
	}

	checks := make([]qc.Check, len(checkModels))
	for i, model := range checkModels {
		checks[i] = *model.ToDomain()
	}
	return checks, nil
}

// FindLatestByOrder returns the most recent check for an order
func (r *GormQCCheckRepository) FindLatestByOrder(ctx context.Context, orderID uuid.UUID) (*qc.Check, error) {
	var model models.QCCheckModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("checked_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestByOrderAndStage returns the most recent check for an order at
// the given stage
func (r *GormQCCheckRepository) FindLatestByOrderAndStage(ctx context.Context, orderID uuid.UUID, stage order.Stage) (*qc.Check, error) {
	var model models.QCCheckModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND stage = ?", orderID, stage).
		Order("checked_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a new check
func (r *GormQCCheckRepository) Save(ctx context.Context, c *qc.Check) error {
	return r.db.WithContext(ctx).Create(models.QCCheckModelFromDomain(c)).Error
}

// SaveWithEvents persists a new check and its domain events in one transaction
// through the outbox
func (r *GormQCCheckRepository) SaveWithEvents(ctx context.Context, c *qc.Check, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.QCCheckModelFromDomain(c)).Error; err != nil {
			return err
		}

		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}

		return nil
	})
}

// CountByOrder counts checks for an order
func (r *GormQCCheckRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QCCheckModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormQCCheckRepository implements qc.Repository
var _ qc.Repository = (*GormQCCheckRepository)(nil)

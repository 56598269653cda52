package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/shared"
	"github.com/loomline/backend/internal/infrastructure/persistence/models"
)

// openStatuses are the assignment states still awaiting a decision
var openStatuses = []negotiation.AssignmentStatus{
	negotiation.StatusPending,
	negotiation.StatusCounterOffered,
}

// GormAssignmentRepository implements negotiation.Repository using GORM
type GormAssignmentRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormAssignmentRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an assignment by its ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*negotiation.Assignment, error) {
	var model models.AssignmentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByOrder finds the single open (pending or counter_offered) assignment
// for an order
func (r *GormAssignmentRepository) FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*negotiation.Assignment, error) {
	var model models.AssignmentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND status IN ?", orderID, openStatuses).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns the full assignment history for an order, newest first
func (r *GormAssignmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]negotiation.Assignment, error) {
	var assignmentModels []models.AssignmentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(assignmentModels), nil
}

// FindBySupplier finds assignments offered to a supplier
func (r *GormAssignmentRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]negotiation.Assignment, error) {
	var assignmentModels []models.AssignmentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AssignmentModel{}).Where("supplier_id = ?", supplierID),
		filter,
	)

	if err := query.Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(assignmentModels), nil
}

// FindPendingBySupplier finds open assignments awaiting a supplier's response
func (r *GormAssignmentRepository) FindPendingBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]negotiation.Assignment, error) {
	var assignmentModels []models.AssignmentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AssignmentModel{}).
			Where("supplier_id = ? AND status IN ?", supplierID, openStatuses),
		filter,
	)

	if err := query.Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(assignmentModels), nil
}

// FindExpiredBefore finds open assignments whose deadline passed before the cutoff
func (r *GormAssignmentRepository) FindExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]negotiation.Assignment, error) {
	var assignmentModels []models.AssignmentModel
	query := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?", openStatuses, cutoff).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(assignmentModels), nil
}

// Save creates or updates an assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, a *negotiation.Assignment) error {
	model := models.AssignmentModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormAssignmentRepository) SaveWithLock(ctx context.Context, a *negotiation.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, a)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// This implements the transactional outbox pattern - events are saved to the outbox table
// in the same transaction as the aggregate, ensuring guaranteed event delivery.
func (r *GormAssignmentRepository) SaveWithLockAndEvents(ctx context.Context, a *negotiation.Assignment, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, a); err != nil {
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

// saveWithLockTx performs the version-checked update inside an open transaction.
// A brand new assignment (no row yet) is inserted instead.
func (r *GormAssignmentRepository) saveWithLockTx(tx *gorm.DB, a *negotiation.Assignment) error {
	var count int64
	if err := tx.Model(&models.AssignmentModel{}).
		Where("id = ?", a.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return tx.Create(models.AssignmentModelFromDomain(a)).Error
	}

	var currentVersion int
	if err := tx.Model(&models.AssignmentModel{}).
		Where("id = ?", a.ID).
		Select("version").
		Scan(&currentVersion).Error; err != nil {
		return err
	}

	if currentVersion != a.Version {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The assignment has been modified by another user")
	}

	a.Version++
	a.UpdatedAt = time.Now()

	model := models.AssignmentModelFromDomain(a)
	result := tx.Model(&models.AssignmentModel{}).
		Where("id = ? AND version = ?", a.ID, currentVersion).
		Updates(map[string]interface{}{
			"counter_price":  model.CounterPrice,
			"status":         model.Status,
			"notes":          model.Notes,
			"response_notes": model.ResponseNotes,
			"responded_at":   model.RespondedAt,
			"expires_at":     model.ExpiresAt,
			"superseded_by":  model.SupersededBy,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The assignment has been modified by another user")
	}

	return nil
}

// CountBySupplier counts assignments for a supplier
func (r *GormAssignmentRepository) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAssignmentRepository) toDomainSlice(assignmentModels []models.AssignmentModel) []negotiation.Assignment {
	assignments := make([]negotiation.Assignment, len(assignmentModels))
	for i, model := range assignmentModels {
		assignments[i] = *model.ToDomain()
	}
	return assignments
}

// applyFilter applies filter options to the query
func (r *GormAssignmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		}
	}

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, AssignmentSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormAssignmentRepository implements negotiation.Repository
var _ negotiation.Repository = (*GormAssignmentRepository)(nil)

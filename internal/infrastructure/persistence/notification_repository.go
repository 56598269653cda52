package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loomline/backend/internal/domain/notification"
	"github.com/loomline/backend/internal/domain/shared"
	"github.com/loomline/backend/internal/infrastructure/persistence/models"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRecipient lists a user's notifications, newest first
func (r *GormNotificationRepository) FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]notification.Notification, error) {
	var notificationModels []models.NotificationModel
	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	sortField := ValidateSortField(filter.OrderBy, NotificationSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, err
	}

	notifications := make([]notification.Notification, len(notificationModels))
	for i, model := range notificationModels {
		notifications[i] = *model.ToDomain()
	}
	return notifications, nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n)).Error
}

// ExistsByDedupeKey checks whether a notification with this dedupe key was
// already delivered to the recipient
func (r *GormNotificationRepository) ExistsByDedupeKey(ctx context.Context, recipientID uuid.UUID, dedupeKey string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND dedupe_key = ?", recipientID, dedupeKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkRead stamps one notification read for its owner. Marking an already
// read notification again keeps the original timestamp.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, recipientID, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientID).
		Updates(map[string]interface{}{
			"read_at":    at,
			"updated_at": at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the notification does not exist for this recipient, or it
		// was already read. Distinguish the two.
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.NotificationModel{}).
			Where("id = ? AND recipient_id = ?", id, recipientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
	}
	return nil
}

// MarkAllRead stamps all of a user's unread notifications read and returns
// how many were updated
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Updates(map[string]interface{}{
			"read_at":    at,
			"updated_at": at,
		})

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountUnread counts a user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)

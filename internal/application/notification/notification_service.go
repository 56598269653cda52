package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/notification"
	"github.com/loomline/backend/internal/domain/shared"
)

// NotificationService handles a user's in-app notification feed
type NotificationService struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}

	notifications, err := s.repo.FindByRecipient(ctx, recipientID, filter.UnreadOnly, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToNotificationResponses(notifications), nil
}

// MarkRead stamps one notification read for its owner
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, recipientID, notificationID, time.Now())
}

// MarkAllRead stamps all unread notifications read, returning how many
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID, time.Now())
}

// CountUnread returns the user's unread badge count
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// Repository defines the interface for notification persistence
type Repository interface {
	// FindByID finds a notification by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByRecipient lists a user's notifications, newest first
	FindByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]Notification, error)

	// Save creates or updates a notification
	Save(ctx context.Context, n *Notification) error

	// ExistsByDedupeKey checks whether a notification with this dedupe key
	// was already delivered to the recipient
	ExistsByDedupeKey(ctx context.Context, recipientID uuid.UUID, dedupeKey string) (bool, error)

	// MarkRead stamps one notification read for its owner
	MarkRead(ctx context.Context, recipientID, id uuid.UUID, at time.Time) error

	// MarkAllRead stamps all of a user's unread notifications read
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error)

	// CountUnread counts a user's unread notifications
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

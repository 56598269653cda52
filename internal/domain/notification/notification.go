package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/shared"
)

// Notification is one in-app message delivered to a user as a consequence of
// an order or negotiation event. Rows are written by the outbox consumer, so
// a crashed delivery is retried rather than lost; the dedupe key protects
// recipients from seeing the same event twice.
type Notification struct {
	shared.BaseEntity
	RecipientID uuid.UUID
	OrderID     *uuid.UUID
	EventType   string
	Title       string
	Body        string
	DedupeKey   string
	ReadAt      *time.Time
}

// NewNotification creates an unread notification
func NewNotification(recipientID uuid.UUID, orderID *uuid.UUID, eventType, title, body, dedupeKey string) (*Notification, error) {
	if recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient cannot be empty")
	}
	if eventType == "" {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION", "Event type is required")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION", "Title is required")
	}

	return &Notification{
		BaseEntity:  shared.NewBaseEntity(),
		RecipientID: recipientID,
		OrderID:     orderID,
		EventType:   eventType,
		Title:       title,
		Body:        body,
		DedupeKey:   dedupeKey,
	}, nil
}

// MarkRead stamps the notification as read. Idempotent.
func (n *Notification) MarkRead(now time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &now
		n.UpdatedAt = now
	}
}

// IsRead reports whether the notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for notifications. The dedupe key
// is unique per recipient so at-least-once event delivery never produces a
// duplicate row.
type NotificationModel struct {
	BaseModel
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_recipient_read,priority:1;uniqueIndex:idx_notifications_recipient_dedupe,priority:1"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
	EventType   string     `gorm:"type:varchar(100);not null"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Body        string     `gorm:"type:text"`
	DedupeKey   string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_notifications_recipient_dedupe,priority:2"`
	ReadAt      *time.Time `gorm:"index:idx_notifications_recipient_read,priority:2"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity:  m.BaseModel.ToDomain(),
		RecipientID: m.RecipientID,
		OrderID:     m.OrderID,
		EventType:   m.EventType,
		Title:       m.Title,
		Body:        m.Body,
		DedupeKey:   m.DedupeKey,
		ReadAt:      m.ReadAt,
	}
}

// FromDomain populates the persistence model from a domain Notification.
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.RecipientID = n.RecipientID
	m.OrderID = n.OrderID
	m.EventType = n.EventType
	m.Title = n.Title
	m.Body = n.Body
	m.DedupeKey = n.DedupeKey
	m.ReadAt = n.ReadAt
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{}
	m.FromDomain(n)
	return m
}

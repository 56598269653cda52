package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/notification"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	EventType   string     `json:"event_type"`
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	Read        bool       `json:"read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NotificationListFilter represents filter options for the notification list
type NotificationListFilter struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page" binding:"min=0"`
	PageSize   int  `form:"page_size" binding:"min=0,max=100"`
}

// ToNotificationResponse converts a domain notification to the API response
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		OrderID:   n.OrderID,
		EventType: n.EventType,
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses converts a slice of domain notifications
func ToNotificationResponses(notifications []notification.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		responses[i] = ToNotificationResponse(&notifications[i])
	}
	return responses
}

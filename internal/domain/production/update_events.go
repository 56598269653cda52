package production

import (
	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/shared"
)

// Event type constants for production updates
const (
	EventTypeUpdatePosted = "production.update_posted"
)

const aggregateTypeUpdate = "ProductionUpdate"

// UpdatePostedEvent is published for every accepted production update. It is
// the payload the realtime stream replays in sequence order.
type UpdatePostedEvent struct {
	shared.BaseDomainEvent
	OrderID              uuid.UUID   `json:"order_id"`
	Stage                order.Stage `json:"stage"`
	Message              string      `json:"message"`
	CompletionPercentage int         `json:"completion_percentage"`
	Photos               []string    `json:"photos,omitempty"`
	CreatedBy            uuid.UUID   `json:"created_by"`
	Corrects             *uuid.UUID  `json:"corrects,omitempty"`
	Sequence             int64       `json:"sequence"`
}

// NewUpdatePostedEvent creates a new UpdatePostedEvent
func NewUpdatePostedEvent(u *Update) *UpdatePostedEvent {
	return &UpdatePostedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeUpdatePosted, aggregateTypeUpdate, u.ID),
		OrderID:              u.OrderID,
		Stage:                u.Stage,
		Message:              u.Message,
		CompletionPercentage: u.CompletionPercentage,
		Photos:               u.Photos,
		CreatedBy:            u.CreatedBy,
		Corrects:             u.Corrects,
		Sequence:             u.Sequence,
	}
}

package production

import (
	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/shared"
)

const maxPhotosPerUpdate = 10

// Update is one supplier progress report for an order. Updates are
// append-only: once written they are never edited or deleted, and a mistake
// is fixed by a later update carrying Corrects. Sequence is assigned per
// order at persistence time and gives realtime consumers a strict replay
// order.
type Update struct {
	shared.BaseAggregateRoot
	OrderID              uuid.UUID
	Stage                order.Stage
	Message              string
	CompletionPercentage int
	Photos               []string
	CreatedBy            uuid.UUID
	Corrects             *uuid.UUID
	Sequence             int64
}

// NewUpdate creates a production update report
func NewUpdate(orderID uuid.UUID, stage order.Stage, message string, percentage int, photos []string, createdBy uuid.UUID) (*Update, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if !stage.IsValid() {
		return nil, shared.NewDomainError("INVALID_STAGE", "Unknown production stage")
	}
	if percentage < 0 || percentage > 100 {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Completion percentage must be between 0 and 100")
	}
	if len(message) > 2000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 2000 characters")
	}
	if len(photos) > maxPhotosPerUpdate {
		return nil, shared.NewDomainError("TOO_MANY_PHOTOS", "A single update cannot carry more than 10 photos")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Update author cannot be empty")
	}

	u := &Update{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		OrderID:              orderID,
		Stage:                stage,
		Message:              message,
		CompletionPercentage: percentage,
		Photos:               photos,
		CreatedBy:            createdBy,
	}

	return u, nil
}

// MarkCorrects links this update as a correction of an earlier one. The
// earlier row stays in place; readers see both.
func (u *Update) MarkCorrects(updateID uuid.UUID) error {
	if updateID == uuid.Nil {
		return shared.NewDomainError("INVALID_CORRECTION", "Corrected update ID cannot be empty")
	}
	if updateID == u.ID {
		return shared.NewDomainError("INVALID_CORRECTION", "An update cannot correct itself")
	}
	u.Corrects = &updateID
	return nil
}

// IsCorrection reports whether this update corrects an earlier one
func (u *Update) IsCorrection() bool {
	return u.Corrects != nil
}

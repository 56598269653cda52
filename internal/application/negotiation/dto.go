package negotiation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/negotiation"
)

// OfferRequest represents admin offering an order to a supplier
type OfferRequest struct {
	SupplierID   uuid.UUID       `json:"supplier_id" binding:"required"`
	OfferedPrice decimal.Decimal `json:"offered_price" binding:"required"`
	Notes        string          `json:"notes" binding:"max=1000"`
	ExpiresAt    *time.Time      `json:"expires_at"`
}

// RejectRequest represents rejecting an offer or counter-offer
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// CounterOfferRequest represents a supplier countering with a new price
type CounterOfferRequest struct {
	CounterPrice decimal.Decimal `json:"counter_price" binding:"required"`
	Notes        string          `json:"notes" binding:"required,min=1,max=1000"`
}

// CancelRequest represents admin withdrawing an open offer
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AssignmentResponse represents an assignment in API responses
type AssignmentResponse struct {
	ID            uuid.UUID        `json:"id"`
	OrderID       uuid.UUID        `json:"order_id"`
	SupplierID    uuid.UUID        `json:"supplier_id"`
	OfferedPrice  decimal.Decimal  `json:"offered_price"`
	CounterPrice  *decimal.Decimal `json:"counter_price,omitempty"`
	Status        string           `json:"status"`
	Notes         string           `json:"notes,omitempty"`
	ResponseNotes string           `json:"response_notes,omitempty"`
	RespondedAt   *time.Time       `json:"responded_at,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	SupersededBy  *uuid.UUID       `json:"superseded_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Version       int              `json:"version"`
}

// ToAssignmentResponse converts a domain assignment to the API response
func ToAssignmentResponse(a *negotiation.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            a.ID,
		OrderID:       a.OrderID,
		SupplierID:    a.SupplierID,
		OfferedPrice:  a.OfferedPrice,
		CounterPrice:  a.CounterPrice,
		Status:        a.Status.String(),
		Notes:         a.Notes,
		ResponseNotes: a.ResponseNotes,
		RespondedAt:   a.RespondedAt,
		ExpiresAt:     a.ExpiresAt,
		SupersededBy:  a.SupersededBy,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		Version:       a.Version,
	}
}

// ToAssignmentResponses converts a slice of domain assignments
func ToAssignmentResponses(assignments []negotiation.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = ToAssignmentResponse(&assignments[i])
	}
	return responses
}

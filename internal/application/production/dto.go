package production

import (
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/production"
)

// PostUpdateRequest represents a supplier posting a progress report
type PostUpdateRequest struct {
	Stage                string     `json:"stage" binding:"required"`
	Message              string     `json:"message" binding:"max=2000"`
	CompletionPercentage int        `json:"completion_percentage" binding:"min=0,max=100"`
	Photos               []string   `json:"photos" binding:"max=10"`
	Corrects             *uuid.UUID `json:"corrects"`
}

// UpdateResponse represents a production update in API responses
type UpdateResponse struct {
	ID                   uuid.UUID  `json:"id"`
	OrderID              uuid.UUID  `json:"order_id"`
	Stage                string     `json:"stage"`
	Message              string     `json:"message,omitempty"`
	CompletionPercentage int        `json:"completion_percentage"`
	Photos               []string   `json:"photos,omitempty"`
	CreatedBy            uuid.UUID  `json:"created_by"`
	Corrects             *uuid.UUID `json:"corrects,omitempty"`
	Sequence             int64      `json:"sequence"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ToUpdateResponse converts a domain update to the API response
func ToUpdateResponse(u *production.Update) UpdateResponse {
	return UpdateResponse{
		ID:                   u.ID,
		OrderID:              u.OrderID,
		Stage:                u.Stage.String(),
		Message:              u.Message,
		CompletionPercentage: u.CompletionPercentage,
		Photos:               u.Photos,
		CreatedBy:            u.CreatedBy,
		Corrects:             u.Corrects,
		Sequence:             u.Sequence,
		CreatedAt:            u.CreatedAt,
	}
}

// ToUpdateResponses converts a slice of domain updates
func ToUpdateResponses(updates []production.Update) []UpdateResponse {
	responses := make([]UpdateResponse, len(updates))
	for i := range updates {
		responses[i] = ToUpdateResponse(&updates[i])
	}
	return responses
}

package qc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/qc"
)

// DefectInput represents one defect category in a check request
type DefectInput struct {
	Severity    string `json:"severity" binding:"required,oneof=minor major critical"`
	Count       int    `json:"count" binding:"required,min=1"`
	Description string `json:"description" binding:"required,min=1,max=500"`
	Photo       string `json:"photo" binding:"max=500"`
}

// RecordCheckRequest represents recording a quality inspection
type RecordCheckRequest struct {
	Stage          string        `json:"stage" binding:"required"`
	TotalInspected int           `json:"total_inspected" binding:"required,min=1"`
	PassedCount    int           `json:"passed_count" binding:"min=0"`
	FailedCount    int           `json:"failed_count" binding:"min=0"`
	Defects        []DefectInput `json:"defects" binding:"dive"`
	Notes          string        `json:"notes" binding:"max=2000"`
}

// DefectResponse represents a defect in API responses
type DefectResponse struct {
	ID          uuid.UUID `json:"id"`
	Severity    string    `json:"severity"`
	Count       int       `json:"count"`
	Description string    `json:"description"`
	Photo       string    `json:"photo,omitempty"`
}

// CheckResponse represents a quality check in API responses
type CheckResponse struct {
	ID             uuid.UUID        `json:"id"`
	OrderID        uuid.UUID        `json:"order_id"`
	Stage          string           `json:"stage"`
	CheckedBy      uuid.UUID        `json:"checked_by"`
	TotalInspected int              `json:"total_inspected"`
	PassedCount    int              `json:"passed_count"`
	FailedCount    int              `json:"failed_count"`
	PassRate       decimal.Decimal  `json:"pass_rate"`
	Result         string           `json:"result"`
	Defects        []DefectResponse `json:"defects,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	CheckedAt      time.Time        `json:"checked_at"`
}

// ToCheckResponse converts a domain check to the API response
func ToCheckResponse(c *qc.Check) CheckResponse {
	defects := make([]DefectResponse, len(c.Defects))
	for i, d := range c.Defects {
		defects[i] = DefectResponse{
			ID:          d.ID,
			Severity:    d.Severity.String(),
			Count:       d.Count,
			Description: d.Description,
			Photo:       d.Photo,
		}
	}
	return CheckResponse{
		ID:             c.ID,
		OrderID:        c.OrderID,
		Stage:          c.Stage.String(),
		CheckedBy:      c.CheckedBy,
		TotalInspected: c.TotalInspected,
		PassedCount:    c.PassedCount,
		FailedCount:    c.FailedCount,
		PassRate:       c.PassRate(),
		Result:         c.Result.String(),
		Defects:        defects,
		Notes:          c.Notes,
		CheckedAt:      c.CheckedAt,
	}
}

// ToCheckResponses converts a slice of domain checks
func ToCheckResponses(checks []qc.Check) []CheckResponse {
	responses := make([]CheckResponse, len(checks))
	for i := range checks {
		responses[i] = ToCheckResponse(&checks[i])
	}
	return responses
}

package qc

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/shared"
)

// Event type constants for quality checks
const (
	EventTypeCheckRecorded = "qc.check_recorded"
)

const aggregateTypeCheck = "QualityCheck"

// CheckRecordedEvent is published for every recorded inspection
type CheckRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	Stage          string          `json:"stage"`
	CheckedBy      uuid.UUID       `json:"checked_by"`
	TotalInspected int             `json:"total_inspected"`
	PassedCount    int             `json:"passed_count"`
	FailedCount    int             `json:"failed_count"`
	PassRate       decimal.Decimal `json:"pass_rate"`
	Result         Result          `json:"result"`
	CriticalDefect bool            `json:"critical_defect"`
}

// NewCheckRecordedEvent creates a new CheckRecordedEvent
func NewCheckRecordedEvent(c *Check) *CheckRecordedEvent {
	return &CheckRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCheckRecorded, aggregateTypeCheck, c.ID),
		OrderID:         c.OrderID,
		Stage:           c.Stage.String(),
		CheckedBy:       c.CheckedBy,
		TotalInspected:  c.TotalInspected,
		PassedCount:     c.PassedCount,
		FailedCount:     c.FailedCount,
		PassRate:        c.PassRate(),
		Result:          c.Result,
		CriticalDefect:  c.HasCriticalDefect(),
	}
}

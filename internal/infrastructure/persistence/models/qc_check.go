package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/qc"
)

// QCCheckModel is the persistence model for quality checks. Defects are a
// small bounded list and live in a JSON column rather than their own table.
type QCCheckModel struct {
	AggregateModel
	OrderID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	Stage          order.Stage `gorm:"type:varchar(30);not null;index"`
	CheckedBy      uuid.UUID `gorm:"type:uuid;not null"`
	TotalInspected int       `gorm:"not null"`
	PassedCount    int       `gorm:"not null"`
	FailedCount    int       `gorm:"not null"`
	DefectsJSON    string    `gorm:"column:defects;type:jsonb;default:'[]'"`
	Notes          string    `gorm:"type:text"`
	Result         qc.Result `gorm:"type:varchar(20);not null"`
	CheckedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (QCCheckModel) TableName() string {
	return "qc_checks"
}

// defectRecord is the JSON shape of one defect inside DefectsJSON
type defectRecord struct {
	ID          uuid.UUID `json:"id"`
	Severity    string    `json:"severity"`
	Count       int       `json:"count"`
	Description string    `json:"description"`
	Photo       string    `json:"photo,omitempty"`
}

// ToDomain converts the persistence model to a domain Check.
func (m *QCCheckModel) ToDomain() *qc.Check {
	var records []defectRecord
	if m.DefectsJSON != "" {
		_ = json.Unmarshal([]byte(m.DefectsJSON), &records)
	}
	defects := make([]qc.Defect, len(records))
	for i, r := range records {
		defects[i] = qc.Defect{
			ID:          r.ID,
			Severity:    qc.Severity(r.Severity),
			Count:       r.Count,
			Description: r.Description,
			Photo:       r.Photo,
		}
	}

	return &qc.Check{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		Stage:             m.Stage,
		CheckedBy:         m.CheckedBy,
		TotalInspected:    m.TotalInspected,
		PassedCount:       m.PassedCount,
		FailedCount:       m.FailedCount,
		Defects:           defects,
		Notes:             m.Notes,
		Result:            m.Result,
		CheckedAt:         m.CheckedAt,
	}
}

// FromDomain populates the persistence model from a domain Check.
func (m *QCCheckModel) FromDomain(c *qc.Check) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OrderID = c.OrderID
	m.Stage = c.Stage
	m.CheckedBy = c.CheckedBy
	m.TotalInspected = c.TotalInspected
	m.PassedCount = c.PassedCount
	m.FailedCount = c.FailedCount
	m.DefectsJSON = marshalDefects(c.Defects)
	m.Notes = c.Notes
	m.Result = c.Result
	m.CheckedAt = c.CheckedAt
}

// QCCheckModelFromDomain creates a new persistence model from a domain Check.
func QCCheckModelFromDomain(c *qc.Check) *QCCheckModel {
	m := &QCCheckModel{}
	m.FromDomain(c)
	return m
}

func marshalDefects(defects []qc.Defect) string {
	if len(defects) == 0 {
		return "[]"
	}
	records := make([]defectRecord, len(defects))
	for i, d := range defects {
		records[i] = defectRecord{
			ID:          d.ID,
			Severity:    d.Severity.String(),
			Count:       d.Count,
			Description: d.Description,
			Photo:       d.Photo,
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "[]"
	}
	return string(b)
}

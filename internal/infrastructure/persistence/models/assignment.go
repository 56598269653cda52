package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/negotiation"
)

// AssignmentModel is the persistence model for the supplier Assignment aggregate.
// One row per negotiation round; superseded rows are kept for the audit trail.
type AssignmentModel struct {
	AggregateModel
	OrderID       uuid.UUID                    `gorm:"type:uuid;not null;index:idx_assignments_order_status,priority:1"`
	SupplierID    uuid.UUID                    `gorm:"type:uuid;not null;index"`
	OfferedPrice  decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	CounterPrice  *decimal.Decimal             `gorm:"type:decimal(18,4)"`
	Status        negotiation.AssignmentStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_assignments_order_status,priority:2"`
	OfferedBy     uuid.UUID                    `gorm:"type:uuid;not null"`
	Notes         string                       `gorm:"type:text"`
	ResponseNotes string                       `gorm:"type:text"`
	RespondedAt   *time.Time
	ExpiresAt     *time.Time `gorm:"index"`
	SupersededBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string {
	return "supplier_assignments"
}

// ToDomain converts the persistence model to a domain Assignment aggregate.
func (m *AssignmentModel) ToDomain() *negotiation.Assignment {
	return &negotiation.Assignment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderID:           m.OrderID,
		SupplierID:        m.SupplierID,
		OfferedPrice:      m.OfferedPrice,
		CounterPrice:      m.CounterPrice,
		Status:            m.Status,
		OfferedBy:         m.OfferedBy,
		Notes:             m.Notes,
		ResponseNotes:     m.ResponseNotes,
		RespondedAt:       m.RespondedAt,
		ExpiresAt:         m.ExpiresAt,
		SupersededBy:      m.SupersededBy,
	}
}

// FromDomain populates the persistence model from a domain Assignment aggregate.
func (m *AssignmentModel) FromDomain(a *negotiation.Assignment) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.OrderID = a.OrderID
	m.SupplierID = a.SupplierID
	m.OfferedPrice = a.OfferedPrice
	m.CounterPrice = a.CounterPrice
	m.Status = a.Status
	m.OfferedBy = a.OfferedBy
	m.Notes = a.Notes
	m.ResponseNotes = a.ResponseNotes
	m.RespondedAt = a.RespondedAt
	m.ExpiresAt = a.ExpiresAt
	m.SupersededBy = a.SupersededBy
}

// AssignmentModelFromDomain creates a new persistence model from a domain Assignment aggregate.
func AssignmentModelFromDomain(a *negotiation.Assignment) *AssignmentModel {
	m := &AssignmentModel{}
	m.FromDomain(a)
	return m
}

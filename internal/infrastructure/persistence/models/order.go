package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber         string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	BuyerID             uuid.UUID            `gorm:"type:uuid;not null;index"`
	SupplierID          *uuid.UUID           `gorm:"type:uuid;index"`
	BuyerPrice          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SupplierPrice       *decimal.Decimal     `gorm:"type:decimal(18,4)"`
	AdminMargin         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	MarginPercentage    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	WorkflowStatus      order.WorkflowStatus `gorm:"type:varchar(20);not null;default:'unassigned';index"`
	PaymentStatus       order.PaymentStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	TargetDate          *time.Time           `gorm:"index"`
	CurrentStage        order.Stage          `gorm:"type:varchar(30);not null;default:'yarn_received'"`
	StageProgressJSON   string               `gorm:"column:stage_progress;type:jsonb;default:'{}'"`
	SpecialInstructions string               `gorm:"type:text"`
	AdminNotes          string               `gorm:"type:text"`
	AssignedAt          *time.Time
	CancelledAt         *time.Time
	CancelReason        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	progress := make(order.StageProgress)
	if m.StageProgressJSON != "" {
		// A malformed row degrades to empty progress rather than failing the read
		_ = json.Unmarshal([]byte(m.StageProgressJSON), &progress)
	}

	return &order.Order{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		BuyerID:             m.BuyerID,
		SupplierID:          m.SupplierID,
		BuyerPrice:          m.BuyerPrice,
		SupplierPrice:       m.SupplierPrice,
		AdminMargin:         m.AdminMargin,
		MarginPercentage:    m.MarginPercentage,
		WorkflowStatus:      m.WorkflowStatus,
		PaymentStatus:       m.PaymentStatus,
		TargetDate:          m.TargetDate,
		CurrentStage:        m.CurrentStage,
		StageProgress:       progress,
		SpecialInstructions: m.SpecialInstructions,
		AdminNotes:          m.AdminNotes,
		AssignedAt:          m.AssignedAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.BuyerID = o.BuyerID
	m.SupplierID = o.SupplierID
	m.BuyerPrice = o.BuyerPrice
	m.SupplierPrice = o.SupplierPrice
	m.AdminMargin = o.AdminMargin
	m.MarginPercentage = o.MarginPercentage
	m.WorkflowStatus = o.WorkflowStatus
	m.PaymentStatus = o.PaymentStatus
	m.TargetDate = o.TargetDate
	m.CurrentStage = o.CurrentStage
	m.StageProgressJSON = marshalStageProgress(o.StageProgress)
	m.SpecialInstructions = o.SpecialInstructions
	m.AdminNotes = o.AdminNotes
	m.AssignedAt = o.AssignedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

func marshalStageProgress(p order.StageProgress) string {
	if len(p) == 0 {
		return "{}"
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

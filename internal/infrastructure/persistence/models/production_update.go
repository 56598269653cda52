package models

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/production"
)

// ProductionUpdateModel is the persistence model for the append-only production
// update log. Sequence is assigned per order inside the append transaction and
// drives FIFO replay.
type ProductionUpdateModel struct {
	AggregateModel
	OrderID              uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_production_updates_order_seq,priority:1"`
	Stage                order.Stage `gorm:"type:varchar(30);not null"`
	Message              string      `gorm:"type:text"`
	CompletionPercentage int         `gorm:"not null;default:0"`
	PhotosJSON           string      `gorm:"column:photos;type:jsonb;default:'[]'"`
	CreatedBy            uuid.UUID   `gorm:"type:uuid;not null"`
	Corrects             *uuid.UUID  `gorm:"type:uuid"`
	Sequence             int64       `gorm:"not null;uniqueIndex:idx_production_updates_order_seq,priority:2"`
}

// TableName returns the table name for GORM
func (ProductionUpdateModel) TableName() string {
	return "production_updates"
}

// ToDomain converts the persistence model to a domain Update.
func (m *ProductionUpdateModel) ToDomain() *production.Update {
	var photos []string
	if m.PhotosJSON != "" {
		_ = json.Unmarshal([]byte(m.PhotosJSON), &photos)
	}

	return &production.Update{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		OrderID:              m.OrderID,
		Stage:                m.Stage,
		Message:              m.Message,
		CompletionPercentage: m.CompletionPercentage,
		Photos:               photos,
		CreatedBy:            m.CreatedBy,
		Corrects:             m.Corrects,
		Sequence:             m.Sequence,
	}
}

// FromDomain populates the persistence model from a domain Update.
func (m *ProductionUpdateModel) FromDomain(u *production.Update) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.OrderID = u.OrderID
	m.Stage = u.Stage
	m.Message = u.Message
	m.CompletionPercentage = u.CompletionPercentage
	m.PhotosJSON = marshalStringSlice(u.Photos)
	m.CreatedBy = u.CreatedBy
	m.Corrects = u.Corrects
	m.Sequence = u.Sequence
}

// ProductionUpdateModelFromDomain creates a new persistence model from a domain Update.
func ProductionUpdateModelFromDomain(u *production.Update) *ProductionUpdateModel {
	m := &ProductionUpdateModel{}
	m.FromDomain(u)
	return m
}

func marshalStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "[]"
	}
	return string(b)
}

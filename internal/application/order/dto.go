package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/loomline/backend/internal/domain/order"
)

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	// BuyerID is required for admin-created orders; buyers always create
	// for themselves and the handler overwrites this with the actor ID.
	BuyerID             uuid.UUID       `json:"buyer_id"`
	BuyerPrice          decimal.Decimal `json:"buyer_price" binding:"required"`
	TargetDate          *time.Time      `json:"target_date"`
	SpecialInstructions string          `json:"special_instructions" binding:"max=2000"`
}

// UpdateBuyerPriceRequest represents a request to reprice an order
type UpdateBuyerPriceRequest struct {
	BuyerPrice decimal.Decimal `json:"buyer_price" binding:"required"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// UpdatePaymentStatusRequest represents a request to update payment bookkeeping
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending partial paid"`
}

// UpdateAdminNotesRequest represents a request to update internal notes
type UpdateAdminNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// QuoteRequest represents a request to estimate an order before creating it
type QuoteRequest struct {
	Quantity      int             `json:"quantity" binding:"required,min=1"`
	UnitPrice     decimal.Decimal `json:"unit_price" binding:"required"`
	LeadTimeDays  int             `json:"lead_time_days" binding:"omitempty,min=1"`
	ExpressRushed bool            `json:"express_rushed"`
}

// QuoteEstimateResponse represents a price and delivery estimate
type QuoteEstimateResponse struct {
	TotalPrice            decimal.Decimal `json:"total_price"`
	EstimatedDeliveryDays int             `json:"estimated_delivery_days"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search         string     `form:"search"`
	BuyerID        *uuid.UUID `form:"buyer_id"`
	SupplierID     *uuid.UUID `form:"supplier_id"`
	WorkflowStatus *string    `form:"workflow_status"`
	PaymentStatus  *string    `form:"payment_status"`
	StartDate      *time.Time `form:"start_date"`
	EndDate        *time.Time `form:"end_date"`
	Page           int        `form:"page" binding:"min=0"`
	PageSize       int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StageEntryResponse represents one production stage in the timeline
type StageEntryResponse struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	Percentage int    `json:"percentage"`
}

// OrderResponse represents an order in API responses. Margin fields are
// admin-only and stripped by the handler for other roles.
type OrderResponse struct {
	ID                  uuid.UUID            `json:"id"`
	OrderNumber         string               `json:"order_number"`
	BuyerID             uuid.UUID            `json:"buyer_id"`
	SupplierID          *uuid.UUID           `json:"supplier_id,omitempty"`
	BuyerPrice          decimal.Decimal      `json:"buyer_price"`
	SupplierPrice       *decimal.Decimal     `json:"supplier_price,omitempty"`
	AdminMargin         *decimal.Decimal     `json:"admin_margin,omitempty"`
	MarginPercentage    *decimal.Decimal     `json:"margin_percentage,omitempty"`
	WorkflowStatus      string               `json:"workflow_status"`
	PaymentStatus       string               `json:"payment_status"`
	TargetDate          *time.Time           `json:"target_date,omitempty"`
	CurrentStage        string               `json:"current_stage"`
	Stages              []StageEntryResponse `json:"stages"`
	SpecialInstructions string               `json:"special_instructions,omitempty"`
	AdminNotes          string               `json:"admin_notes,omitempty"`
	AssignedAt          *time.Time           `json:"assigned_at,omitempty"`
	CancelledAt         *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason        string               `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	Version             int                  `json:"version"`
}

// OrderListItemResponse represents an order in list responses (less detail)
type OrderListItemResponse struct {
	ID             uuid.UUID        `json:"id"`
	OrderNumber    string           `json:"order_number"`
	BuyerID        uuid.UUID        `json:"buyer_id"`
	SupplierID     *uuid.UUID       `json:"supplier_id,omitempty"`
	BuyerPrice     decimal.Decimal  `json:"buyer_price"`
	AdminMargin    *decimal.Decimal `json:"admin_margin,omitempty"`
	WorkflowStatus string           `json:"workflow_status"`
	PaymentStatus  string           `json:"payment_status"`
	CurrentStage   string           `json:"current_stage"`
	TargetDate     *time.Time       `json:"target_date,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToOrderResponse converts a domain order to the full API response
func ToOrderResponse(o *order.Order) OrderResponse {
	stages := make([]StageEntryResponse, 0, len(order.Stages()))
	for _, s := range order.Stages() {
		stages = append(stages, StageEntryResponse{
			Stage:      s.String(),
			Status:     string(o.StageStatusOf(s)),
			Percentage: o.StageProgress.Get(s),
		})
	}

	resp := OrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		BuyerID:             o.BuyerID,
		SupplierID:          o.SupplierID,
		BuyerPrice:          o.BuyerPrice,
		SupplierPrice:       o.SupplierPrice,
		WorkflowStatus:      o.WorkflowStatus.String(),
		PaymentStatus:       string(o.PaymentStatus),
		TargetDate:          o.TargetDate,
		CurrentStage:        o.CurrentStage.String(),
		Stages:              stages,
		SpecialInstructions: o.SpecialInstructions,
		AdminNotes:          o.AdminNotes,
		AssignedAt:          o.AssignedAt,
		CancelledAt:         o.CancelledAt,
		CancelReason:        o.CancelReason,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		Version:             o.Version,
	}
	margin := o.AdminMargin
	pct := o.MarginPercentage
	resp.AdminMargin = &margin
	resp.MarginPercentage = &pct
	return resp
}

// StripFinancials removes the fields only admin may see: the supplier price
// and derived margin for buyers, the buyer price and margin for suppliers.
func (r *OrderResponse) StripFinancials(forSupplier bool) {
	r.AdminMargin = nil
	r.MarginPercentage = nil
	r.AdminNotes = ""
	if forSupplier {
		r.BuyerPrice = decimal.Zero
	} else {
		r.SupplierPrice = nil
	}
}

// ToOrderListItemResponse converts a domain order to the list item response
func ToOrderListItemResponse(o *order.Order) OrderListItemResponse {
	margin := o.AdminMargin
	return OrderListItemResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		BuyerID:        o.BuyerID,
		SupplierID:     o.SupplierID,
		BuyerPrice:     o.BuyerPrice,
		AdminMargin:    &margin,
		WorkflowStatus: o.WorkflowStatus.String(),
		PaymentStatus:  string(o.PaymentStatus),
		CurrentStage:   o.CurrentStage.String(),
		TargetDate:     o.TargetDate,
		CreatedAt:      o.CreatedAt,
	}
}

// ToOrderListItemResponses converts a slice of domain orders
func ToOrderListItemResponses(orders []order.Order) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderListItemResponse(&orders[i])
	}
	return responses
}

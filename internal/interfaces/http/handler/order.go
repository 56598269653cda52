package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	orderapp "github.com/loomline/backend/internal/application/order"
	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.POST("/quote", h.Quote)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/cancel", h.Cancel)

		admin := orders.Group("", middleware.RequireRoles(identity.RoleAdmin))
		{
			admin.PUT("/:id/price", h.UpdateBuyerPrice)
			admin.PUT("/:id/payment-status", h.UpdatePaymentStatus)
			admin.PUT("/:id/notes", h.UpdateAdminNotes)
			admin.POST("/:id/complete", h.Complete)
		}
	}
}

// Create creates a new order. Buyers create their own orders; admin may
// create on behalf of any buyer.
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if actor.IsSupplier() {
		h.Forbidden(c, "Suppliers cannot create orders")
		return
	}

	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if actor.IsBuyer() {
		req.BuyerID = actor.UserID
	}

	resp, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !actor.IsAdmin() {
		resp.StripFinancials(false)
	}
	h.Created(c, resp)
}

// Quote returns a price and delivery estimate without creating an order
func (h *OrderHandler) Quote(c *gin.Context) {
	var req orderapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.Quote(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns orders scoped to the caller: admin sees everything, buyers
// and suppliers only their own orders, with margin fields stripped.
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	var (
		items []orderapp.OrderListItemResponse
		total int64
		err   error
	)
	switch {
	case actor.IsAdmin():
		items, total, err = h.orderService.List(c.Request.Context(), filter)
	case actor.IsBuyer():
		items, total, err = h.orderService.ListByBuyer(c.Request.Context(), actor.UserID, filter)
	default:
		items, total, err = h.orderService.ListBySupplier(c.Request.Context(), actor.UserID, filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !actor.IsAdmin() {
		stripListFinancials(items, actor.IsSupplier())
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Get returns a single order by ID, authorized and redacted per role
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !h.authorizeOrderView(c, actor, resp) {
		return
	}
	if !actor.IsAdmin() {
		resp.StripFinancials(actor.IsSupplier())
	}
	h.Success(c, resp)
}

// UpdateBuyerPrice reprices an order before assignment. Admin only.
func (h *OrderHandler) UpdateBuyerPrice(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.UpdateBuyerPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateBuyerPrice(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePaymentStatus updates payment bookkeeping. Admin only.
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateAdminNotes updates internal notes. Admin only.
func (h *OrderHandler) UpdateAdminNotes(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.UpdateAdminNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.UpdateAdminNotes(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete marks a ready_to_ship order as completed. Admin only.
func (h *OrderHandler) Complete(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.Complete(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels an order. Admin may cancel any order; a buyer may cancel
// their own. State rules live in the domain layer.
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if actor.IsSupplier() {
		h.Forbidden(c, "Suppliers cannot cancel orders")
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if actor.IsBuyer() {
		existing, err := h.orderService.GetByID(c.Request.Context(), orderID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if existing.BuyerID != actor.UserID {
			h.Forbidden(c, "Order belongs to another buyer")
			return
		}
	}

	resp, err := h.orderService.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !actor.IsAdmin() {
		resp.StripFinancials(false)
	}
	h.Success(c, resp)
}

// stripListFinancials removes admin-only fields from list items in place
func stripListFinancials(items []orderapp.OrderListItemResponse, forSupplier bool) {
	for i := range items {
		items[i].AdminMargin = nil
		if forSupplier {
			items[i].BuyerPrice = decimal.Zero
		}
	}
}

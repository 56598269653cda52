package handler

import (
	"github.com/gin-gonic/gin"

	negotiationapp "github.com/loomline/backend/internal/application/negotiation"
	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/shared"
	"github.com/loomline/backend/internal/interfaces/http/middleware"
)

// AssignmentHandler handles supplier negotiation API endpoints. Actions on
// an order's open offer round live under /orders/:id/assignment; the
// negotiation history and the supplier inbox live under /assignments.
type AssignmentHandler struct {
	BaseHandler
	negotiationService *negotiationapp.NegotiationService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(negotiationService *negotiationapp.NegotiationService) *AssignmentHandler {
	return &AssignmentHandler{
		negotiationService: negotiationService,
	}
}

// RegisterRoutes registers negotiation routes on the given group
func (h *AssignmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders/:id/assignment")
	{
		orders.POST("", middleware.RequireRoles(identity.RoleAdmin), h.Offer)
		orders.GET("", h.GetOpen)
		orders.POST("/accept", middleware.RequireRoles(identity.RoleSupplier), h.Accept)
		orders.POST("/reject", h.Reject)
		orders.POST("/counter", middleware.RequireRoles(identity.RoleSupplier), h.Counter)
		orders.POST("/counter/accept", middleware.RequireRoles(identity.RoleAdmin), h.AcceptCounter)
		orders.POST("/cancel", middleware.RequireRoles(identity.RoleAdmin), h.Cancel)
	}

	rg.GET("/orders/:id/assignments", middleware.RequireRoles(identity.RoleAdmin), h.History)

	assignments := rg.Group("/assignments")
	{
		assignments.GET("/pending", middleware.RequireRoles(identity.RoleSupplier), h.ListPending)
		assignments.GET("/:id", h.Get)
	}
}

// Offer opens a new offer round for an unassigned order. Admin only.
func (h *AssignmentHandler) Offer(c *gin.Context) {
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

	var req negotiationapp.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.negotiationService.Offer(c.Request.Context(), actor, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetOpen returns the order's currently open offer round
func (h *AssignmentHandler) GetOpen(c *gin.Context) {
	actor, resp, ok := h.resolveOpen(c)
	if !ok {
		return
	}
	if !h.authorizeAssignmentAccess(c, actor, resp) {
		return
	}
	h.Success(c, resp)
}

// Accept records a supplier accepting the pending offer on an order
func (h *AssignmentHandler) Accept(c *gin.Context) {
	actor, open, ok := h.resolveOpen(c)
	if !ok {
		return
	}

	resp, err := h.negotiationService.Accept(c.Request.Context(), actor, open.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AcceptCounter records admin accepting the supplier's counter-offer,
// settling the order at the counter price
func (h *AssignmentHandler) AcceptCounter(c *gin.Context) {
	actor, open, ok := h.resolveOpen(c)
	if !ok {
		return
	}

	resp, err := h.negotiationService.Accept(c.Request.Context(), actor, open.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject records the supplier declining the pending offer. The domain FSM
// enforces that only the offered supplier may reject, and only from pending;
// admin resolves a counter-offer by re-offering or cancelling instead.
func (h *AssignmentHandler) Reject(c *gin.Context) {
	actor, open, ok := h.resolveOpen(c)
	if !ok {
		return
	}

	var req negotiationapp.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.negotiationService.Reject(c.Request.Context(), actor, open.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Counter records the supplier countering the pending offer with a new price
func (h *AssignmentHandler) Counter(c *gin.Context) {
	actor, open, ok := h.resolveOpen(c)
	if !ok {
		return
	}

	var req negotiationapp.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.negotiationService.CounterOffer(c.Request.Context(), actor, open.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel withdraws the open offer round. Admin only.
func (h *AssignmentHandler) Cancel(c *gin.Context) {
	actor, open, ok := h.resolveOpen(c)
	if !ok {
		return
	}

	var req negotiationapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.negotiationService.Cancel(c.Request.Context(), actor, open.ID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// History returns every offer round for an order, newest first. Admin only.
func (h *AssignmentHandler) History(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	responses, err := h.negotiationService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// ListPending returns the supplier's inbox of offers awaiting a response
func (h *AssignmentHandler) ListPending(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter := shared.DefaultFilter()
	responses, err := h.negotiationService.ListPendingForSupplier(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// Get returns a single assignment by ID
func (h *AssignmentHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	assignmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	resp, err := h.negotiationService.GetByID(c.Request.Context(), assignmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.authorizeAssignmentAccess(c, actor, resp) {
		return
	}
	h.Success(c, resp)
}

// resolveOpen loads the authenticated actor and the order's open offer
// round. Returns ok=false if a response was already written.
func (h *AssignmentHandler) resolveOpen(c *gin.Context) (identity.Actor, *negotiationapp.AssignmentResponse, bool) {
	actor, ok := currentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return identity.Actor{}, nil, false
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return identity.Actor{}, nil, false
	}

	open, err := h.negotiationService.GetOpenByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return identity.Actor{}, nil, false
	}
	return actor, open, true
}

// authorizeAssignmentAccess rejects suppliers reading offer rounds addressed
// to someone else. Buyers never see negotiations.
func (h *AssignmentHandler) authorizeAssignmentAccess(c *gin.Context, actor identity.Actor, resp *negotiationapp.AssignmentResponse) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsSupplier():
		if resp.SupplierID != actor.UserID {
			h.Forbidden(c, "Assignment is addressed to another supplier")
			return false
		}
		return true
	default:
		h.Forbidden(c, "Buyers cannot view negotiations")
		return false
	}
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	productionapp "github.com/loomline/backend/internal/application/production"
	"github.com/loomline/backend/internal/domain/shared"
)

// ProductionHandler handles production progress API endpoints
type ProductionHandler struct {
	BaseHandler
	productionService *productionapp.ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(productionService *productionapp.ProductionService) *ProductionHandler {
	return &ProductionHandler{
		productionService: productionService,
	}
}

// RegisterRoutes registers production update routes on the given group
func (h *ProductionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	updates := rg.Group("/orders/:id/production-updates")
	{
		updates.POST("", h.Post)
		updates.GET("", h.List)
	}
}

// Post records a progress report against an order's stage timeline. The
// service authorizes the poster (assigned supplier or admin) and runs the
// stage-order and QC-gate rules.
func (h *ProductionHandler) Post(c *gin.Context) {
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

	var req productionapp.PostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.productionService.PostUpdate(c.Request.Context(), actor, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns an order's production timeline. With ?after_sequence=N only
// updates past that sequence are returned, for clients resuming a feed.
func (h *ProductionHandler) List(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if after := c.Query("after_sequence"); after != "" {
		afterSeq, err := strconv.ParseInt(after, 10, 64)
		if err != nil || afterSeq < 0 {
			h.BadRequest(c, "after_sequence must be a non-negative integer")
			return
		}
		responses, err := h.productionService.ListByOrderSince(c.Request.Context(), orderID, afterSeq)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, responses)
		return
	}

	var q paginationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}

	responses, err := h.productionService.ListByOrder(c.Request.Context(), orderID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// paginationQuery validates the shared page/page_size query parameters
type paginationQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

package handler

import (
	"github.com/gin-gonic/gin"

	qcapp "github.com/loomline/backend/internal/application/qc"
	"github.com/loomline/backend/internal/domain/shared"
)

// QCHandler handles quality control API endpoints
type QCHandler struct {
	BaseHandler
	qcService *qcapp.QCService
}

// NewQCHandler creates a new QCHandler
func NewQCHandler(qcService *qcapp.QCService) *QCHandler {
	return &QCHandler{
		qcService: qcService,
	}
}

// RegisterRoutes registers QC routes on the given group
func (h *QCHandler) RegisterRoutes(rg *gin.RouterGroup) {
	checks := rg.Group("/orders/:id/qc-checks")
	{
		checks.POST("", h.Record)
		checks.GET("", h.List)
		checks.GET("/latest", h.GetLatest)
	}
}

// Record records a quality inspection against an order. The service
// authorizes the inspector and validates the count arithmetic; the latest
// check's result is what the ship gate consults.
func (h *QCHandler) Record(c *gin.Context) {
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

	var req qcapp.RecordCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.qcService.RecordCheck(c.Request.Context(), actor, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns an order's inspection history, newest first
func (h *QCHandler) List(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
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

	responses, err := h.qcService.ListByOrder(c.Request.Context(), orderID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// GetLatest returns the most recent inspection, the one the ship gate uses
func (h *QCHandler) GetLatest(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.qcService.GetLatest(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

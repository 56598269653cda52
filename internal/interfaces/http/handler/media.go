package handler

import (
	"github.com/gin-gonic/gin"

	mediaapp "github.com/loomline/backend/internal/application/media"
)

// MediaHandler handles photo upload and download URL endpoints. Photos are
// opaque storage keys attached to production updates and QC defects; the
// server never proxies the bytes.
type MediaHandler struct {
	BaseHandler
	photoService *mediaapp.PhotoService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(photoService *mediaapp.PhotoService) *MediaHandler {
	return &MediaHandler{
		photoService: photoService,
	}
}

// RegisterRoutes registers media routes on the given group
func (h *MediaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/:id/photos/upload-url", h.InitiateUpload)
	rg.POST("/photos/urls", h.ResolveURLs)
}

// InitiateUpload returns a presigned PUT URL and the storage key the client
// should reference from its production update or defect
func (h *MediaHandler) InitiateUpload(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req mediaapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.OrderID = orderID

	resp, err := h.photoService.InitiateUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ResolveURLsRequest is a batch of storage keys to resolve into download URLs
type ResolveURLsRequest struct {
	StorageKeys []string `json:"storage_keys" binding:"required,min=1,max=50"`
}

// ResolveURLs resolves storage keys into time-limited download URLs.
// Individual failures degrade to an empty URL rather than failing the batch.
func (h *MediaHandler) ResolveURLs(c *gin.Context) {
	var req ResolveURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	urls, err := h.photoService.ResolveDownloadURLs(c.Request.Context(), req.StorageKeys)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, urls)
}

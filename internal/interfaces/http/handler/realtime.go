package handler

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/loomline/backend/internal/application/order"
	"github.com/loomline/backend/internal/infrastructure/realtime"
)

// RealtimeHandler serves the per-order event feed. Clients poll with the
// last stream ID they saw and receive everything after it in publish order,
// so a reconnecting client never observes events out of sequence.
type RealtimeHandler struct {
	BaseHandler
	bus          realtime.Bus
	orderService *orderapp.OrderService
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(bus realtime.Bus, orderService *orderapp.OrderService) *RealtimeHandler {
	return &RealtimeHandler{
		bus:          bus,
		orderService: orderService,
	}
}

// RegisterRoutes registers realtime routes on the given group
func (h *RealtimeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:id/events", h.Replay)
}

// StreamEventResponse represents one event in the order feed
type StreamEventResponse struct {
	StreamID   string          `json:"stream_id"`
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Replay returns the order's event feed after the given stream ID.
// Query parameters: after (stream ID to resume from, empty for the start)
// and limit (max events, default 100).
func (h *RealtimeHandler) Replay(c *gin.Context) {
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

	// Same visibility rule as the order itself
	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !h.authorizeOrderView(c, actor, order) {
		return
	}

	var limit int64 = 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > 1000 {
			h.BadRequest(c, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	events, err := h.bus.Replay(c.Request.Context(), orderID, c.Query("after"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]StreamEventResponse, len(events))
	for i, ev := range events {
		responses[i] = StreamEventResponse{
			StreamID:   ev.StreamID,
			EventID:    ev.EventID,
			EventType:  ev.EventType,
			OccurredAt: ev.OccurredAt,
			Payload:    json.RawMessage(ev.Payload),
		}
	}
	h.Success(c, responses)
}

package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/notification"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/production"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/domain/shared"
)

// delivery is one notification the fan-out wants to create
type delivery struct {
	recipientID uuid.UUID
	title       string
	body        string
}

// OrderEventsHandler consumes outbox events and fans them out: it writes
// in-app notification rows and pushes the event onto the order's realtime
// stream. Delivery is at-least-once, so the handler dedupes on the event ID
// before taking any side effect, and again per recipient on the dedupe key.
type OrderEventsHandler struct {
	notificationRepo notification.Repository
	orderRepo        order.Repository
	idempotency      shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	realtime         RealtimePublisher
	logger           *zap.Logger
}

// NewOrderEventsHandler creates a new fan-out handler
func NewOrderEventsHandler(
	notificationRepo notification.Repository,
	orderRepo order.Repository,
	idempotency shared.IdempotencyStore,
	realtime RealtimePublisher,
	logger *zap.Logger,
) *OrderEventsHandler {
	return &OrderEventsHandler{
		notificationRepo: notificationRepo,
		orderRepo:        orderRepo,
		idempotency:      idempotency,
		idempotencyCfg:   shared.DefaultIdempotencyConfig(),
		realtime:         realtime,
		logger:           logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderEventsHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderAssigned,
		order.EventTypeOrderProductionStarted,
		order.EventTypeOrderStageAdvanced,
		order.EventTypeOrderCompleted,
		order.EventTypeOrderCancelled,
		negotiation.EventTypeAssignmentOffered,
		negotiation.EventTypeAssignmentAccepted,
		negotiation.EventTypeAssignmentRejected,
		negotiation.EventTypeAssignmentCounterOffered,
		negotiation.EventTypeAssignmentExpired,
		production.EventTypeUpdatePosted,
		qc.EventTypeCheckRecorded,
	}
}

// Handle fans one event out to notifications and the realtime stream
func (h *OrderEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	dedupeKey := "fanout:" + event.EventID().String()
	if h.idempotency != nil && h.idempotencyCfg.Enabled {
		fresh, err := h.idempotency.MarkProcessed(ctx, dedupeKey, h.idempotencyCfg.TTL)
		if err != nil {
			// dedupe store down: fall through, the per-recipient key still protects us
			h.logger.Warn("idempotency check failed, continuing", zap.Error(err))
		} else if !fresh {
			h.logger.Debug("event already fanned out, skipping",
				zap.String("event_id", event.EventID().String()),
				zap.String("event_type", event.EventType()),
			)
			return nil
		}
	}

	orderID, deliveries, err := h.plan(ctx, event)
	if err != nil {
		return err
	}

	for _, d := range deliveries {
		perRecipient := fmt.Sprintf("%s:%s:%s", event.EventType(), event.EventID(), d.recipientID)
		exists, err := h.notificationRepo.ExistsByDedupeKey(ctx, d.recipientID, perRecipient)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		oid := orderID
		n, err := notification.NewNotification(d.recipientID, &oid, event.EventType(), d.title, d.body, perRecipient)
		if err != nil {
			return err
		}
		if err := h.notificationRepo.Save(ctx, n); err != nil {
			return err
		}
	}

	if h.realtime != nil && orderID != uuid.Nil {
		if err := h.realtime.PublishOrderEvent(ctx, orderID, event); err != nil {
			return fmt.Errorf("realtime publish for order %s: %w", orderID, err)
		}
	}

	h.logger.Debug("event fanned out",
		zap.String("event_type", event.EventType()),
		zap.String("order_id", orderID.String()),
		zap.Int("notifications", len(deliveries)),
	)

	return nil
}

// plan resolves the order and recipients for one event
func (h *OrderEventsHandler) plan(ctx context.Context, event shared.DomainEvent) (uuid.UUID, []delivery, error) {
	switch e := event.(type) {
	case *order.OrderAssignedEvent:
		return e.AggregateID(), []delivery{
			{e.BuyerID, "Order assigned", fmt.Sprintf("Order %s has been assigned to a supplier", e.OrderNumber)},
			{e.SupplierID, "Order assigned to you", fmt.Sprintf("Order %s is now yours at %s per piece", e.OrderNumber, e.SupplierPrice)},
		}, nil

	case *order.OrderProductionStartedEvent:
		return e.AggregateID(), []delivery{
			{e.BuyerID, "Production started", fmt.Sprintf("Production on order %s has begun", e.OrderNumber)},
		}, nil

	case *order.OrderStageAdvancedEvent:
		return e.AggregateID(), []delivery{
			{e.BuyerID, "Production advanced", fmt.Sprintf("Order %s moved from %s to %s", e.OrderNumber, e.FromStage, e.ToStage)},
		}, nil

	case *order.OrderCompletedEvent:
		deliveries := []delivery{
			{e.BuyerID, "Order completed", fmt.Sprintf("Order %s is complete and ready to ship", e.OrderNumber)},
		}
		if e.SupplierID != uuid.Nil {
			deliveries = append(deliveries, delivery{e.SupplierID, "Order completed", fmt.Sprintf("Order %s has been marked complete", e.OrderNumber)})
		}
		return e.AggregateID(), deliveries, nil

	case *order.OrderCancelledEvent:
		return e.AggregateID(), []delivery{
			{e.BuyerID, "Order cancelled", fmt.Sprintf("Order %s was cancelled: %s", e.OrderNumber, e.Reason)},
		}, nil

	case *negotiation.AssignmentOfferedEvent:
		return e.OrderID, []delivery{
			{e.SupplierID, "New order offer", fmt.Sprintf("You have an offer at %s per piece", e.OfferedPrice)},
		}, nil

	case *negotiation.AssignmentAcceptedEvent:
		return e.OrderID, []delivery{
			{e.OfferedBy, "Offer accepted", fmt.Sprintf("Supplier accepted at %s per piece", e.AgreedPrice)},
		}, nil

	case *negotiation.AssignmentRejectedEvent:
		return e.OrderID, []delivery{
			{e.OfferedBy, "Offer rejected", fmt.Sprintf("Offer was rejected: %s", e.Reason)},
		}, nil

	case *negotiation.AssignmentCounterOfferedEvent:
		return e.OrderID, []delivery{
			{e.OfferedBy, "Counter-offer received", fmt.Sprintf("Supplier countered %s with %s: %s", e.OfferedPrice, e.CounterPrice, e.Notes)},
		}, nil

	case *negotiation.AssignmentExpiredEvent:
		return e.OrderID, []delivery{
			{e.OfferedBy, "Offer expired", "An offer expired without a supplier response"},
		}, nil

	case *production.UpdatePostedEvent:
		o, err := h.orderRepo.FindByID(ctx, e.OrderID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		return e.OrderID, []delivery{
			{o.BuyerID, "Production update", fmt.Sprintf("Order %s: %s at %d%%", o.OrderNumber, e.Stage, e.CompletionPercentage)},
		}, nil

	case *qc.CheckRecordedEvent:
		o, err := h.orderRepo.FindByID(ctx, e.OrderID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		deliveries := []delivery{
			{o.BuyerID, "Quality check recorded", fmt.Sprintf("Order %s quality check: %s (%s%% pass rate)", o.OrderNumber, e.Result, e.PassRate)},
		}
		if e.Result == qc.ResultFail && o.SupplierID != nil {
			deliveries = append(deliveries, delivery{*o.SupplierID, "Quality check failed",
				fmt.Sprintf("Order %s failed inspection (%s%% pass rate); rework required", o.OrderNumber, e.PassRate)})
		}
		return e.OrderID, deliveries, nil

	default:
		// unknown payload type: still stream it if it names an order aggregate
		h.logger.Warn("unhandled event payload type", zap.String("event_type", event.EventType()))
		return uuid.Nil, nil, nil
	}
}

var _ shared.EventHandler = (*OrderEventsHandler)(nil)

package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/pricing"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/domain/shared"
)

// OrderService handles order lifecycle operations
type OrderService struct {
	orderRepo order.Repository
	qcRepo    qc.Repository
	qcMode    qc.Mode
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, qcRepo qc.Repository, qcMode qc.Mode, logger *zap.Logger) *OrderService {
	if !qcMode.IsValid() {
		qcMode = qc.ModeAdvisory
	}
	return &OrderService{
		orderRepo: orderRepo,
		qcRepo:    qcRepo,
		qcMode:    qcMode,
		logger:    logger,
	}
}

// Create creates a new order for a buyer
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, req.BuyerID, req.BuyerPrice, req.TargetDate, req.SpecialInstructions)
	if err != nil {
		return nil, err
	}

	events := o.DomainEvents()
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, o, events); err != nil {
		return nil, err
	}
	o.ClearDomainEvents()

	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("buyer_id", o.BuyerID.String()),
	)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its order number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.BuyerID != nil {
		domainFilter.Filters["buyer_id"] = *filter.BuyerID
	}
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.WorkflowStatus != nil {
		domainFilter.Filters["workflow_status"] = *filter.WorkflowStatus
	}
	if filter.PaymentStatus != nil {
		domainFilter.Filters["payment_status"] = *filter.PaymentStatus
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}

// ListByBuyer retrieves orders placed by a buyer
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	filter.BuyerID = &buyerID
	return s.List(ctx, filter)
}

// ListBySupplier retrieves orders attached to a supplier
func (s *OrderService) ListBySupplier(ctx context.Context, supplierID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	filter.SupplierID = &supplierID
	return s.List(ctx, filter)
}

// UpdateBuyerPrice changes the buyer price on an order that has not entered
// production, recomputing the derived margin
func (s *OrderService) UpdateBuyerPrice(ctx context.Context, orderID uuid.UUID, req UpdateBuyerPriceRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateBuyerPrice(req.BuyerPrice); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// UpdatePaymentStatus updates the payment bookkeeping field
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, req UpdatePaymentStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.SetPaymentStatus(order.PaymentStatus(req.PaymentStatus)); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// UpdateAdminNotes sets the internal admin notes on an order
func (s *OrderService) UpdateAdminNotes(ctx context.Context, orderID uuid.UUID, req UpdateAdminNotesRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	o.SetAdminNotes(req.Notes)

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// Complete moves an order to completed once production has reached
// ready_to_ship at 100%. Under the strict quality mode the latest inspection
// gates the transition: a missing or failing check holds the order back.
func (s *OrderService) Complete(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.qcMode == qc.ModeStrict {
		latest, err := s.qcRepo.FindLatestByOrderAndStage(ctx, orderID, order.StageFinalQC)
		if err != nil {
			var derr *shared.DomainError
			if errors.As(err, &derr) && derr.Code == shared.ErrNotFound.Code {
				return nil, shared.NewDomainError(shared.ErrCodeQCHold, "Completion requires a recorded final_qc quality check")
			}
			return nil, err
		}
		if latest.Blocks(s.qcMode) {
			return nil, shared.NewDomainError(shared.ErrCodeQCHold, "Latest final_qc check failed; re-inspect before completing")
		}
	}

	if err := o.Complete(); err != nil {
		return nil, err
	}

	events := o.DomainEvents()
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, o, events); err != nil {
		return nil, err
	}
	o.ClearDomainEvents()

	s.logger.Info("order completed",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
	)

	response := ToOrderResponse(o)
	return &response, nil
}

// Cancel cancels an order that has not entered production
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}

	events := o.DomainEvents()
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, o, events); err != nil {
		return nil, err
	}
	o.ClearDomainEvents()

	s.logger.Info("order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("reason", req.Reason),
	)

	response := ToOrderResponse(o)
	return &response, nil
}

// Quote estimates total price and delivery for a prospective order. Delivery
// starts from the requested lead time (default 30 days), stretches one day
// per 200 pieces, and compresses to three quarters for rushed orders.
func (s *OrderService) Quote(req QuoteRequest) (*QuoteEstimateResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidPrice, "Quantity must be positive")
	}
	if req.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidPrice, "Unit price must be positive")
	}

	days := req.LeadTimeDays
	if days <= 0 {
		days = 30
	}
	days += req.Quantity / 200
	if req.ExpressRushed {
		days = (days*3 + 3) / 4
	}

	estimate := pricing.QuoteEstimate{
		TotalPrice:            req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))).RoundBank(2),
		EstimatedDeliveryDays: days,
	}

	return &QuoteEstimateResponse{
		TotalPrice:            estimate.TotalPrice,
		EstimatedDeliveryDays: estimate.EstimatedDeliveryDays,
	}, nil
}

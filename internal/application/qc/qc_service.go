package qc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/domain/shared"
)

// QCService records quality inspections. Checks are append-only; the latest
// one per order is what the completion gate consults.
type QCService struct {
	checkRepo qc.Repository
	orderRepo order.Repository
	logger    *zap.Logger
}

// NewQCService creates a new QCService
func NewQCService(checkRepo qc.Repository, orderRepo order.Repository, logger *zap.Logger) *QCService {
	return &QCService{
		checkRepo: checkRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// RecordCheck records an inspection of an order's output at a production
// stage. Admin only; checks run per stage, so the inspected stage must
// already have been reached — work that has not started cannot be inspected.
func (s *QCService) RecordCheck(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req RecordCheckRequest) (*CheckResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only admin can record quality checks")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsInProduction() {
		return nil, shared.NewDomainError("INVALID_STATE", "Quality checks require an order in production")
	}
	stage := order.Stage(req.Stage)
	if !stage.IsValid() {
		return nil, shared.NewDomainError("INVALID_STAGE", fmt.Sprintf("Unknown production stage %q", req.Stage))
	}
	if o.CurrentStage.Before(stage) {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot inspect stage %s before production reaches it (currently %s)", stage, o.CurrentStage))
	}

	defects := make([]qc.Defect, 0, len(req.Defects))
	for _, in := range req.Defects {
		d, err := qc.NewDefect(qc.Severity(in.Severity), in.Count, in.Description, in.Photo)
		if err != nil {
			return nil, err
		}
		defects = append(defects, d)
	}

	c, err := qc.NewCheck(orderID, actor.UserID, stage, req.TotalInspected, req.PassedCount, req.FailedCount, defects, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.checkRepo.SaveWithEvents(ctx, c, c.DomainEvents()); err != nil {
		return nil, err
	}
	c.ClearDomainEvents()

	s.logger.Info("quality check recorded",
		zap.String("order_id", orderID.String()),
		zap.String("stage", stage.String()),
		zap.String("result", c.Result.String()),
		zap.String("pass_rate", c.PassRate().String()),
	)

	response := ToCheckResponse(c)
	return &response, nil
}

// GetLatest returns the most recent check for an order
func (s *QCService) GetLatest(ctx context.Context, orderID uuid.UUID) (*CheckResponse, error) {
	c, err := s.checkRepo.FindLatestByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToCheckResponse(c)
	return &response, nil
}

// ListByOrder returns all checks for an order, newest first
func (s *QCService) ListByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]CheckResponse, error) {
	checks, err := s.checkRepo.FindByOrder(ctx, orderID, filter)
	if err != nil {
		return nil, err
	}
	return ToCheckResponses(checks), nil
}

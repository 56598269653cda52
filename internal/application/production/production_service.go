package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/production"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/domain/shared"
)

// ProductionService handles supplier progress reports. Each accepted report
// advances the order's stage state machine and appends an immutable update
// row in the same transaction. In strict QC mode a fail-classified check
// holds the order at the checked stage until a passing re-check is recorded.
type ProductionService struct {
	txScope    TransactionScope
	updateRepo production.Repository
	qcRepo     qc.Repository
	qcMode     qc.Mode
	logger     *zap.Logger
}

// NewProductionService creates a new ProductionService
func NewProductionService(txScope TransactionScope, updateRepo production.Repository, qcRepo qc.Repository, qcMode qc.Mode, logger *zap.Logger) *ProductionService {
	if !qcMode.IsValid() {
		qcMode = qc.ModeAdvisory
	}
	return &ProductionService{
		txScope:    txScope,
		updateRepo: updateRepo,
		qcRepo:     qcRepo,
		qcMode:     qcMode,
		logger:     logger,
	}
}

// PostUpdate records a progress report for an order. Only the assigned
// supplier (or admin, for corrective entries) may post. The order's stage
// state machine validates the report; an out-of-order stage rejects the
// whole transaction and nothing is written.
func (s *ProductionService) PostUpdate(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req PostUpdateRequest) (*UpdateResponse, error) {
	var response UpdateResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := authorizePoster(actor, o); err != nil {
			return err
		}

		stage := order.Stage(req.Stage)
		if err := s.checkAdvancementGate(ctx, o, stage); err != nil {
			return err
		}
		if err := o.RecordProgress(stage, req.CompletionPercentage); err != nil {
			return err
		}

		u, err := production.NewUpdate(orderID, stage, req.Message, req.CompletionPercentage, req.Photos, actor.UserID)
		if err != nil {
			return err
		}

		if req.Corrects != nil {
			target, err := repos.UpdateRepo().FindByID(ctx, *req.Corrects)
			if err != nil {
				return err
			}
			if target.OrderID != orderID {
				return shared.NewDomainError("INVALID_CORRECTION", "Corrected update belongs to a different order")
			}
			if err := u.MarkCorrects(target.ID); err != nil {
				return err
			}
		}

		if err := repos.OrderRepo().SaveWithLockAndEvents(ctx, o, o.DomainEvents()); err != nil {
			return err
		}
		o.ClearDomainEvents()

		if err := repos.UpdateRepo().AppendWithEvents(ctx, u, func(saved *production.Update) []shared.DomainEvent {
			return []shared.DomainEvent{production.NewUpdatePostedEvent(saved)}
		}); err != nil {
			return err
		}

		response = ToUpdateResponse(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("production update posted",
		zap.String("order_id", orderID.String()),
		zap.String("stage", req.Stage),
		zap.Int("percentage", req.CompletionPercentage),
		zap.Int64("sequence", response.Sequence),
	)

	return &response, nil
}

// ListByOrder returns an order's updates in sequence order
func (s *ProductionService) ListByOrder(ctx context.Context, orderID uuid.UUID, filter shared.Filter) ([]UpdateResponse, error) {
	updates, err := s.updateRepo.FindByOrder(ctx, orderID, filter)
	if err != nil {
		return nil, err
	}
	return ToUpdateResponses(updates), nil
}

// ListByOrderSince returns an order's updates with sequence greater than
// afterSequence, for replay catch-up
func (s *ProductionService) ListByOrderSince(ctx context.Context, orderID uuid.UUID, afterSequence int64) ([]UpdateResponse, error) {
	updates, err := s.updateRepo.FindByOrderSince(ctx, orderID, afterSequence)
	if err != nil {
		return nil, err
	}
	return ToUpdateResponses(updates), nil
}

// checkAdvancementGate enforces the strict QC policy: a report that would
// move the order past a stage whose latest inspection is fail-classified is
// held with QC_HOLD until a passing re-check is recorded. Advisory mode and
// same-stage reports pass through untouched.
func (s *ProductionService) checkAdvancementGate(ctx context.Context, o *order.Order, target order.Stage) error {
	if s.qcMode != qc.ModeStrict || !target.IsValid() || !o.CurrentStage.Before(target) {
		return nil
	}
	for _, stage := range order.Stages() {
		if stage.Before(o.CurrentStage) || !stage.Before(target) {
			continue
		}
		latest, err := s.qcRepo.FindLatestByOrderAndStage(ctx, o.ID, stage)
		if err != nil {
			var derr *shared.DomainError
			if errors.As(err, &derr) && derr.Code == shared.ErrNotFound.Code {
				continue
			}
			return err
		}
		if latest.Blocks(s.qcMode) {
			return shared.NewDomainError(shared.ErrCodeQCHold,
				fmt.Sprintf("Latest quality check at %s failed; re-inspect before advancing to %s", stage, target))
		}
	}
	return nil
}

func authorizePoster(actor identity.Actor, o *order.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsSupplier() && o.SupplierID != nil && *o.SupplierID == actor.UserID {
		return nil
	}
	return shared.NewDomainError("FORBIDDEN", "Only the assigned supplier can post production updates")
}

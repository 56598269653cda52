package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/shared"
)

// NegotiationService coordinates offer rounds between admin and suppliers.
// Every state decision runs inside a transaction scope so the assignment,
// the order and the outbox rows commit or roll back together.
type NegotiationService struct {
	txScope TransactionScope
	repo    negotiation.Repository
	logger  *zap.Logger
}

// NewNegotiationService creates a new NegotiationService
func NewNegotiationService(txScope TransactionScope, repo negotiation.Repository, logger *zap.Logger) *NegotiationService {
	return &NegotiationService{
		txScope: txScope,
		repo:    repo,
		logger:  logger,
	}
}

// Offer creates a pending offer from admin to a supplier. An order with a
// round still pending cannot be offered again (ALREADY_ASSIGNED); after a
// counter-offer admin may re-propose, which supersedes the countered round
// in the same transaction, so at most one assignment per order ever awaits
// a response.
func (s *NegotiationService) Offer(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req OfferRequest) (*AssignmentResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only admin can offer orders to suppliers")
	}

	var response AssignmentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsUnassigned() {
			return shared.NewDomainError(shared.ErrCodeAlreadyAssigned,
				fmt.Sprintf("Order is already %s; only unassigned orders can be offered", o.WorkflowStatus))
		}

		a, err := negotiation.NewAssignment(orderID, req.SupplierID, req.OfferedPrice, actor.UserID, req.Notes, req.ExpiresAt)
		if err != nil {
			return err
		}

		open, err := repos.AssignmentRepo().FindOpenByOrder(ctx, orderID)
		switch {
		case err == nil:
			if open.Status == negotiation.StatusPending {
				return shared.NewDomainError(shared.ErrCodeAlreadyAssigned,
					"Order already has a pending offer awaiting the supplier's response")
			}
			if err := open.Supersede(a.ID); err != nil {
				return err
			}
			if err := repos.AssignmentRepo().SaveWithLock(ctx, open); err != nil {
				return err
			}
		case isNotFound(err):
			// no open round, nothing to supersede
		default:
			return err
		}

		if err := o.AttachSupplier(req.SupplierID); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}

		events := a.DomainEvents()
		if err := repos.AssignmentRepo().SaveWithLockAndEvents(ctx, a, events); err != nil {
			return err
		}
		a.ClearDomainEvents()

		response = ToAssignmentResponse(a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order offered to supplier",
		zap.String("order_id", orderID.String()),
		zap.String("supplier_id", req.SupplierID.String()),
		zap.String("offered_price", req.OfferedPrice.String()),
	)

	return &response, nil
}

// Accept records acceptance of an offer round. A supplier accepting a
// pending offer settles at the offered price; admin accepting a
// counter-offer supersedes the countered round with a fresh accepted round
// at the counter price. Either way the assignment and the order move
// together in one transaction.
func (s *NegotiationService) Accept(ctx context.Context, actor identity.Actor, assignmentID uuid.UUID) (*AssignmentResponse, error) {
	var response AssignmentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		a, err := repos.AssignmentRepo().FindByID(ctx, assignmentID)
		if err != nil {
			return err
		}

		settled := a
		if a.Status == negotiation.StatusCounterOffered {
			replacement, err := a.AcceptCounter(actor)
			if err != nil {
				return err
			}
			if err := repos.AssignmentRepo().SaveWithLock(ctx, a); err != nil {
				return err
			}
			settled = replacement
		} else if err := a.Accept(actor); err != nil {
			return err
		}

		o, err := repos.OrderRepo().FindByID(ctx, settled.OrderID)
		if err != nil {
			return err
		}
		if err := o.ApplyAcceptedPrice(settled.AgreedPrice()); err != nil {
			return err
		}

		if err := repos.AssignmentRepo().SaveWithLockAndEvents(ctx, settled, settled.DomainEvents()); err != nil {
			return err
		}
		settled.ClearDomainEvents()

		if err := repos.OrderRepo().SaveWithLockAndEvents(ctx, o, o.DomainEvents()); err != nil {
			return err
		}
		o.ClearDomainEvents()

		response = ToAssignmentResponse(settled)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment accepted",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("accepted_by", actor.UserID.String()),
		zap.String("role", actor.Role.String()),
	)

	return &response, nil
}

// Reject records the supplier declining a pending offer. The order stays
// unassigned and admin can open a new round.
func (s *NegotiationService) Reject(ctx context.Context, actor identity.Actor, assignmentID uuid.UUID, req RejectRequest) (*AssignmentResponse, error) {
	a, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := a.Reject(actor, req.Reason); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLockAndEvents(ctx, a, a.DomainEvents()); err != nil {
		return nil, err
	}
	a.ClearDomainEvents()

	s.logger.Info("assignment rejected",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("rejected_by", actor.UserID.String()),
	)

	response := ToAssignmentResponse(a)
	return &response, nil
}

// CounterOffer records the supplier proposing a different price
func (s *NegotiationService) CounterOffer(ctx context.Context, actor identity.Actor, assignmentID uuid.UUID, req CounterOfferRequest) (*AssignmentResponse, error) {
	a, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := a.CounterOffer(actor, req.CounterPrice, req.Notes); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLockAndEvents(ctx, a, a.DomainEvents()); err != nil {
		return nil, err
	}
	a.ClearDomainEvents()

	s.logger.Info("assignment countered",
		zap.String("assignment_id", assignmentID.String()),
		zap.String("counter_price", req.CounterPrice.String()),
	)

	response := ToAssignmentResponse(a)
	return &response, nil
}

// Cancel withdraws an open offer. Admin only.
func (s *NegotiationService) Cancel(ctx context.Context, actor identity.Actor, assignmentID uuid.UUID, req CancelRequest) (*AssignmentResponse, error) {
	a, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := a.Cancel(actor, req.Reason); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLockAndEvents(ctx, a, a.DomainEvents()); err != nil {
		return nil, err
	}
	a.ClearDomainEvents()

	response := ToAssignmentResponse(a)
	return &response, nil
}

// GetOpenByOrder retrieves the single open offer round for an order, if any
func (s *NegotiationService) GetOpenByOrder(ctx context.Context, orderID uuid.UUID) (*AssignmentResponse, error) {
	a, err := s.repo.FindOpenByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToAssignmentResponse(a)
	return &response, nil
}

// GetByID retrieves an assignment by ID
func (s *NegotiationService) GetByID(ctx context.Context, assignmentID uuid.UUID) (*AssignmentResponse, error) {
	a, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	response := ToAssignmentResponse(a)
	return &response, nil
}

// ListByOrder returns the full negotiation history for an order, newest first
func (s *NegotiationService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]AssignmentResponse, error) {
	assignments, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToAssignmentResponses(assignments), nil
}

// ListPendingForSupplier returns open assignments awaiting a supplier's response
func (s *NegotiationService) ListPendingForSupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]AssignmentResponse, error) {
	assignments, err := s.repo.FindPendingBySupplier(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}
	return ToAssignmentResponses(assignments), nil
}

// ExpireOverdue times out open assignments whose deadline has passed.
// Intended to run on a ticker; returns how many rounds were expired.
func (s *NegotiationService) ExpireOverdue(ctx context.Context, limit int) (int, error) {
	now := time.Now()
	overdue, err := s.repo.FindExpiredBefore(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range overdue {
		a := &overdue[i]
		if err := a.Expire(now); err != nil {
			continue
		}
		if err := s.repo.SaveWithLockAndEvents(ctx, a, a.DomainEvents()); err != nil {
			// another worker may have raced us on this row
			s.logger.Warn("failed to expire assignment",
				zap.String("assignment_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		a.ClearDomainEvents()
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired overdue assignments", zap.Int("count", expired))
	}
	return expired, nil
}

func isNotFound(err error) bool {
	var derr *shared.DomainError
	return errors.As(err, &derr) && derr.Code == shared.ErrNotFound.Code
}

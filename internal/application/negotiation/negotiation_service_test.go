package negotiation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/negotiation"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/shared"
)

// MockAssignmentRepository is a mock implementation of negotiation.Repository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*negotiation.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*negotiation.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*negotiation.Assignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*negotiation.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]negotiation.Assignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]negotiation.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]negotiation.Assignment, error) {
	args := m.Called(ctx, supplierID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]negotiation.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindPendingBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]negotiation.Assignment, error) {
	args := m.Called(ctx, supplierID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]negotiation.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindExpiredBefore(ctx context.Context, cutoff time.Time, limit int) ([]negotiation.Assignment, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]negotiation.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Save(ctx context.Context, a *negotiation.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) SaveWithLock(ctx context.Context, a *negotiation.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) SaveWithLockAndEvents(ctx context.Context, a *negotiation.Assignment, events []shared.DomainEvent) error {
	args := m.Called(ctx, a, events)
	return args.Error(0)
}

func (m *MockAssignmentRepository) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a trimmed mock of order.Repository (only the
// methods the negotiation flow touches get expectations)
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, buyerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, supplierID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByWorkflowStatus(ctx context.Context, status order.WorkflowStatus, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLockAndEvents(ctx context.Context, o *order.Order, events []shared.DomainEvent) error {
	args := m.Called(ctx, o, events)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByWorkflowStatus(ctx context.Context, status order.WorkflowStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Test helpers

func newTestService(orderRepo *MockOrderRepository, assignmentRepo *MockAssignmentRepository) *NegotiationService {
	scope := NewNoOpTransactionScope(orderRepo, assignmentRepo)
	return NewNegotiationService(scope, assignmentRepo, zap.NewNop())
}

func newUnassignedOrder(t *testing.T) *order.Order {
	o, err := order.NewOrder("ORD-20260115-0001", uuid.New(), decimal.NewFromFloat(6.00), nil, "")
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func adminActor() identity.Actor {
	return identity.Actor{UserID: uuid.New(), Role: identity.RoleAdmin}
}

func TestNegotiationService_Offer(t *testing.T) {
	ctx := context.Background()

	t.Run("offers unassigned order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		o := newUnassignedOrder(t)
		supplierID := uuid.New()

		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		assignmentRepo.On("FindOpenByOrder", ctx, o.ID).Return(nil, shared.ErrNotFound)
		orderRepo.On("SaveWithLock", ctx, o).Return(nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*negotiation.Assignment"), mock.Anything).Return(nil)

		resp, err := service.Offer(ctx, adminActor(), o.ID, OfferRequest{
			SupplierID:   supplierID,
			OfferedPrice: decimal.NewFromFloat(4.00),
		})
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, supplierID, resp.SupplierID)
		require.NotNil(t, o.SupplierID)
		assert.Equal(t, supplierID, *o.SupplierID)
		assert.Equal(t, order.WorkflowUnassigned, o.WorkflowStatus)
	})

	t.Run("refuses while an offer is pending", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		o := newUnassignedOrder(t)
		admin := adminActor()
		open, err := negotiation.NewAssignment(o.ID, uuid.New(), decimal.NewFromFloat(4.00), admin.UserID, "", nil)
		require.NoError(t, err)
		open.ClearDomainEvents()

		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		assignmentRepo.On("FindOpenByOrder", ctx, o.ID).Return(open, nil)

		_, err = service.Offer(ctx, admin, o.ID, OfferRequest{
			SupplierID:   uuid.New(),
			OfferedPrice: decimal.NewFromFloat(4.20),
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, shared.ErrCodeAlreadyAssigned, derr.Code)
		assert.Equal(t, negotiation.StatusPending, open.Status)
		assignmentRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assignmentRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("supersedes a countered round with a fresh offer", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		o := newUnassignedOrder(t)
		admin := adminActor()
		supplierID := uuid.New()
		open, err := negotiation.NewAssignment(o.ID, supplierID, decimal.NewFromFloat(4.00), admin.UserID, "", nil)
		require.NoError(t, err)
		require.NoError(t, open.CounterOffer(identity.Actor{UserID: supplierID, Role: identity.RoleSupplier},
			decimal.NewFromFloat(4.60), "yarn cost up"))
		open.ClearDomainEvents()

		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		assignmentRepo.On("FindOpenByOrder", ctx, o.ID).Return(open, nil)
		assignmentRepo.On("SaveWithLock", ctx, open).Return(nil)
		orderRepo.On("SaveWithLock", ctx, o).Return(nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*negotiation.Assignment"), mock.Anything).Return(nil)

		resp, err := service.Offer(ctx, admin, o.ID, OfferRequest{
			SupplierID:   supplierID,
			OfferedPrice: decimal.NewFromFloat(4.40),
		})
		require.NoError(t, err)

		assert.Equal(t, negotiation.StatusSuperseded, open.Status)
		require.NotNil(t, open.SupersededBy)
		assert.Equal(t, resp.ID, *open.SupersededBy)
	})

	t.Run("rejects non-admin", func(t *testing.T) {
		service := newTestService(new(MockOrderRepository), new(MockAssignmentRepository))
		supplier := identity.Actor{UserID: uuid.New(), Role: identity.RoleSupplier}

		_, err := service.Offer(ctx, supplier, uuid.New(), OfferRequest{
			SupplierID:   uuid.New(),
			OfferedPrice: decimal.NewFromFloat(4.00),
		})
		require.Error(t, err)
	})

	t.Run("rejects order already assigned", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		o := newUnassignedOrder(t)
		require.NoError(t, o.AttachSupplier(uuid.New()))
		require.NoError(t, o.ApplyAcceptedPrice(decimal.NewFromFloat(4.00)))
		o.ClearDomainEvents()

		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := service.Offer(ctx, adminActor(), o.ID, OfferRequest{
			SupplierID:   uuid.New(),
			OfferedPrice: decimal.NewFromFloat(4.00),
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, shared.ErrCodeAlreadyAssigned, derr.Code)
	})
}

func TestNegotiationService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("supplier accept settles order at offered price", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		o := newUnassignedOrder(t)
		supplierID := uuid.New()
		require.NoError(t, o.AttachSupplier(supplierID))

		a, err := negotiation.NewAssignment(o.ID, supplierID, decimal.NewFromFloat(4.00), uuid.New(), "", nil)
		require.NoError(t, err)
		a.ClearDomainEvents()

		assignmentRepo.On("FindByID", ctx, a.ID).Return(a, nil)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, a, mock.Anything).Return(nil)
		orderRepo.On("SaveWithLockAndEvents", ctx, o, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == order.EventTypeOrderAssigned
		})).Return(nil)

		resp, err := service.Accept(ctx, identity.Actor{UserID: supplierID, Role: identity.RoleSupplier}, a.ID)
		require.NoError(t, err)

		assert.Equal(t, "accepted", resp.Status)
		assert.Equal(t, order.WorkflowAssigned, o.WorkflowStatus)
		require.NotNil(t, o.SupplierPrice)
		assert.True(t, o.SupplierPrice.Equal(decimal.NewFromFloat(4.00)))
		assert.True(t, o.AdminMargin.Equal(decimal.NewFromFloat(2.00)))
	})

	t.Run("admin accepting counter settles through a fresh round", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		o := newUnassignedOrder(t)
		supplierID := uuid.New()
		require.NoError(t, o.AttachSupplier(supplierID))
		admin := adminActor()

		a, err := negotiation.NewAssignment(o.ID, supplierID, decimal.NewFromFloat(4.00), admin.UserID, "", nil)
		require.NoError(t, err)
		require.NoError(t, a.CounterOffer(identity.Actor{UserID: supplierID, Role: identity.RoleSupplier},
			decimal.NewFromFloat(4.50), "yarn cost up"))
		a.ClearDomainEvents()

		assignmentRepo.On("FindByID", ctx, a.ID).Return(a, nil)
		orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		assignmentRepo.On("SaveWithLock", ctx, a).Return(nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*negotiation.Assignment"), mock.Anything).Return(nil)
		orderRepo.On("SaveWithLockAndEvents", ctx, o, mock.Anything).Return(nil)

		resp, err := service.Accept(ctx, admin, a.ID)
		require.NoError(t, err)

		// the countered round is closed and a fresh accepted round replaces it
		assert.Equal(t, negotiation.StatusSuperseded, a.Status)
		require.NotNil(t, a.SupersededBy)
		assert.Equal(t, resp.ID, *a.SupersededBy)
		assert.Equal(t, "accepted", resp.Status)
		assert.True(t, resp.OfferedPrice.Equal(decimal.NewFromFloat(4.50)))

		require.NotNil(t, o.SupplierPrice)
		assert.True(t, o.SupplierPrice.Equal(decimal.NewFromFloat(4.50)))
		assert.True(t, o.AdminMargin.Equal(decimal.NewFromFloat(1.50)))
	})

	t.Run("wrong supplier cannot accept", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		a, err := negotiation.NewAssignment(uuid.New(), uuid.New(), decimal.NewFromFloat(4.00), uuid.New(), "", nil)
		require.NoError(t, err)
		a.ClearDomainEvents()

		assignmentRepo.On("FindByID", ctx, a.ID).Return(a, nil)

		_, err = service.Accept(ctx, identity.Actor{UserID: uuid.New(), Role: identity.RoleSupplier}, a.ID)
		require.Error(t, err)
		orderRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNegotiationService_RejectAndCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("reject keeps order unassigned", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		supplierID := uuid.New()
		a, err := negotiation.NewAssignment(uuid.New(), supplierID, decimal.NewFromFloat(4.00), uuid.New(), "", nil)
		require.NoError(t, err)
		a.ClearDomainEvents()

		assignmentRepo.On("FindByID", ctx, a.ID).Return(a, nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, a, mock.Anything).Return(nil)

		resp, err := service.Reject(ctx, identity.Actor{UserID: supplierID, Role: identity.RoleSupplier}, a.ID,
			RejectRequest{Reason: "fully booked"})
		require.NoError(t, err)
		assert.Equal(t, "rejected", resp.Status)
		orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("counter records price and notes", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		supplierID := uuid.New()
		a, err := negotiation.NewAssignment(uuid.New(), supplierID, decimal.NewFromFloat(4.00), uuid.New(), "", nil)
		require.NoError(t, err)
		a.ClearDomainEvents()

		assignmentRepo.On("FindByID", ctx, a.ID).Return(a, nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, a, mock.Anything).Return(nil)

		resp, err := service.CounterOffer(ctx, identity.Actor{UserID: supplierID, Role: identity.RoleSupplier}, a.ID,
			CounterOfferRequest{CounterPrice: decimal.NewFromFloat(4.60), Notes: "linking rates up"})
		require.NoError(t, err)
		assert.Equal(t, "counter_offered", resp.Status)
		require.NotNil(t, resp.CounterPrice)
		assert.True(t, resp.CounterPrice.Equal(decimal.NewFromFloat(4.60)))
	})
}

func TestNegotiationService_ExpireOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("expires rounds past their deadline", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		expires := time.Now().Add(time.Millisecond)
		a, err := negotiation.NewAssignment(uuid.New(), uuid.New(), decimal.NewFromFloat(4.00), uuid.New(), "", &expires)
		require.NoError(t, err)
		a.ClearDomainEvents()
		time.Sleep(5 * time.Millisecond)

		assignmentRepo.On("FindExpiredBefore", ctx, mock.Anything, 100).Return([]negotiation.Assignment{*a}, nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*negotiation.Assignment"), mock.Anything).Return(nil)

		count, err := service.ExpireOverdue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("skips rows another worker already closed", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		assignmentRepo := new(MockAssignmentRepository)
		service := newTestService(orderRepo, assignmentRepo)

		expires := time.Now().Add(time.Millisecond)
		a, err := negotiation.NewAssignment(uuid.New(), uuid.New(), decimal.NewFromFloat(4.00), uuid.New(), "", &expires)
		require.NoError(t, err)
		a.ClearDomainEvents()
		time.Sleep(5 * time.Millisecond)

		assignmentRepo.On("FindExpiredBefore", ctx, mock.Anything, 100).Return([]negotiation.Assignment{*a}, nil)
		assignmentRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*negotiation.Assignment"), mock.Anything).
			Return(shared.ErrConcurrencyConflict)

		count, err := service.ExpireOverdue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

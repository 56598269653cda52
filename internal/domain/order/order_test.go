package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomline/backend/internal/domain/shared"
)

// Test helpers
func createTestOrder(t *testing.T) *Order {
	buyerID := uuid.New()
	o, err := NewOrder("ORD-20260115-0001", buyerID, decimal.NewFromFloat(6.00), nil, "GSM 320 ribbed knit")
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func assignTestSupplier(t *testing.T, o *Order, supplierPrice float64) uuid.UUID {
	supplierID := uuid.New()
	require.NoError(t, o.AttachSupplier(supplierID))
	require.NoError(t, o.ApplyAcceptedPrice(decimal.NewFromFloat(supplierPrice)))
	o.ClearDomainEvents()
	return supplierID
}

func domainErrorCode(t *testing.T, err error) string {
	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	return derr.Code
}

// ============================================
// WorkflowStatus Tests
// ============================================

func TestWorkflowStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  WorkflowStatus
		isValid bool
	}{
		{WorkflowUnassigned, true},
		{WorkflowAssigned, true},
		{WorkflowInProduction, true},
		{WorkflowCompleted, true},
		{WorkflowCancelled, true},
		{WorkflowStatus("shipped"), false},
		{WorkflowStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestWorkflowStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     WorkflowStatus
		to       WorkflowStatus
		canTrans bool
	}{
		// From unassigned
		{WorkflowUnassigned, WorkflowAssigned, true},
		{WorkflowUnassigned, WorkflowCancelled, true},
		{WorkflowUnassigned, WorkflowInProduction, false},
		{WorkflowUnassigned, WorkflowCompleted, false},
		// From assigned
		{WorkflowAssigned, WorkflowInProduction, true},
		{WorkflowAssigned, WorkflowCancelled, true},
		{WorkflowAssigned, WorkflowCompleted, false},
		{WorkflowAssigned, WorkflowUnassigned, false},
		// From in_production: no cancellation once production has started
		{WorkflowInProduction, WorkflowCompleted, true},
		{WorkflowInProduction, WorkflowCancelled, false},
		{WorkflowInProduction, WorkflowAssigned, false},
		// Terminal states
		{WorkflowCompleted, WorkflowCancelled, false},
		{WorkflowCompleted, WorkflowInProduction, false},
		{WorkflowCancelled, WorkflowAssigned, false},
		{WorkflowCancelled, WorkflowCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// NewOrder Tests
// ============================================

func TestNewOrder(t *testing.T) {
	buyerID := uuid.New()

	t.Run("creates order with valid inputs", func(t *testing.T) {
		o, err := NewOrder("ORD-20260115-0001", buyerID, decimal.NewFromFloat(6.00), nil, "double stitch hems")
		require.NoError(t, err)
		require.NotNil(t, o)

		assert.Equal(t, "ORD-20260115-0001", o.OrderNumber)
		assert.Equal(t, buyerID, o.BuyerID)
		assert.Nil(t, o.SupplierID)
		assert.Nil(t, o.SupplierPrice)
		assert.Equal(t, WorkflowUnassigned, o.WorkflowStatus)
		assert.Equal(t, PaymentPending, o.PaymentStatus)
		assert.Equal(t, StageYarnReceived, o.CurrentStage)
		assert.True(t, o.AdminMargin.IsZero())
		assert.True(t, o.MarginPercentage.IsZero())
		assert.Equal(t, "double stitch hems", o.SpecialInstructions)
	})

	t.Run("emits created event", func(t *testing.T) {
		o, err := NewOrder("ORD-20260115-0002", buyerID, decimal.NewFromFloat(6.00), nil, "")
		require.NoError(t, err)

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
		assert.Equal(t, o.ID, events[0].AggregateID())
	})

	t.Run("rejects empty order number", func(t *testing.T) {
		_, err := NewOrder("", buyerID, decimal.NewFromFloat(6.00), nil, "")
		require.Error(t, err)
	})

	t.Run("rejects nil buyer", func(t *testing.T) {
		_, err := NewOrder("ORD-20260115-0003", uuid.Nil, decimal.NewFromFloat(6.00), nil, "")
		require.Error(t, err)
	})

	t.Run("rejects non-positive buyer price", func(t *testing.T) {
		_, err := NewOrder("ORD-20260115-0004", buyerID, decimal.Zero, nil, "")
		require.Error(t, err)
		assert.Equal(t, shared.ErrCodeInvalidPrice, domainErrorCode(t, err))

		_, err = NewOrder("ORD-20260115-0005", buyerID, decimal.NewFromFloat(-1), nil, "")
		require.Error(t, err)
	})
}

// ============================================
// Supplier attachment and pricing
// ============================================

func TestOrder_AttachSupplier(t *testing.T) {
	t.Run("attaches supplier without changing workflow status", func(t *testing.T) {
		o := createTestOrder(t)
		supplierID := uuid.New()

		require.NoError(t, o.AttachSupplier(supplierID))

		require.NotNil(t, o.SupplierID)
		assert.Equal(t, supplierID, *o.SupplierID)
		assert.Equal(t, WorkflowUnassigned, o.WorkflowStatus)
		assert.Empty(t, o.DomainEvents())
	})

	t.Run("rejects nil supplier", func(t *testing.T) {
		o := createTestOrder(t)
		require.Error(t, o.AttachSupplier(uuid.Nil))
	})

	t.Run("rejects attach after assignment", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.Error(t, o.AttachSupplier(uuid.New()))
	})
}

func TestOrder_ApplyAcceptedPrice(t *testing.T) {
	t.Run("sets price, derives margin, moves to assigned", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.AttachSupplier(uuid.New()))

		require.NoError(t, o.ApplyAcceptedPrice(decimal.NewFromFloat(4.00)))

		assert.Equal(t, WorkflowAssigned, o.WorkflowStatus)
		require.NotNil(t, o.SupplierPrice)
		assert.True(t, o.SupplierPrice.Equal(decimal.NewFromFloat(4.00)))
		assert.True(t, o.AdminMargin.Equal(decimal.NewFromFloat(2.00)), "margin = %s", o.AdminMargin)
		assert.True(t, o.MarginPercentage.Equal(decimal.NewFromFloat(33.33)), "pct = %s", o.MarginPercentage)
		require.NotNil(t, o.AssignedAt)

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderAssigned, events[0].EventType())
	})

	t.Run("requires attached supplier", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.ApplyAcceptedPrice(decimal.NewFromFloat(4.00))
		require.Error(t, err)
		assert.Equal(t, shared.ErrCodeNoActiveSupplier, domainErrorCode(t, err))
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.AttachSupplier(uuid.New()))
		err := o.ApplyAcceptedPrice(decimal.Zero)
		require.Error(t, err)
		assert.Equal(t, shared.ErrCodeInvalidPrice, domainErrorCode(t, err))
	})

	t.Run("margin can go negative", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.AttachSupplier(uuid.New()))
		require.NoError(t, o.ApplyAcceptedPrice(decimal.NewFromFloat(6.50)))

		assert.True(t, o.AdminMargin.IsNegative())
		assert.True(t, o.MarginPercentage.IsNegative())
	})
}

func TestOrder_UpdateBuyerPrice(t *testing.T) {
	t.Run("recomputes margin", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)

		require.NoError(t, o.UpdateBuyerPrice(decimal.NewFromFloat(8.00)))

		assert.True(t, o.AdminMargin.Equal(decimal.NewFromFloat(4.00)))
		assert.True(t, o.MarginPercentage.Equal(decimal.NewFromFloat(50)))
	})

	t.Run("margin stays zero without supplier price", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.UpdateBuyerPrice(decimal.NewFromFloat(10.00)))
		assert.True(t, o.AdminMargin.IsZero())
		assert.True(t, o.MarginPercentage.IsZero())
	})

	t.Run("rejects once in production", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageYarnReceived, 10))
		require.Error(t, o.UpdateBuyerPrice(decimal.NewFromFloat(9.00)))
	})
}

// ============================================
// RecordProgress Tests
// ============================================

func TestOrder_RecordProgress(t *testing.T) {
	t.Run("first update starts production", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)

		require.NoError(t, o.RecordProgress(StageYarnReceived, 20))

		assert.Equal(t, WorkflowInProduction, o.WorkflowStatus)
		assert.Equal(t, StageYarnReceived, o.CurrentStage)
		assert.Equal(t, 20, o.StageProgress.Get(StageYarnReceived))

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderProductionStarted, events[0].EventType())
	})

	t.Run("same stage keeps max percentage", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageYarnReceived, 60))

		// a racing lower report is absorbed, not rejected
		require.NoError(t, o.RecordProgress(StageYarnReceived, 40))
		assert.Equal(t, 60, o.StageProgress.Get(StageYarnReceived))

		require.NoError(t, o.RecordProgress(StageYarnReceived, 80))
		assert.Equal(t, 80, o.StageProgress.Get(StageYarnReceived))
	})

	t.Run("advancing to next stage", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageYarnReceived, 100))
		o.ClearDomainEvents()

		require.NoError(t, o.RecordProgress(StageKnitting, 30))

		assert.Equal(t, StageKnitting, o.CurrentStage)
		assert.Equal(t, 30, o.StageProgress.Get(StageKnitting))

		events := o.DomainEvents()
		require.Len(t, events, 1)
		advanced, ok := events[0].(*OrderStageAdvancedEvent)
		require.True(t, ok)
		assert.Equal(t, StageYarnReceived, advanced.FromStage)
		assert.Equal(t, StageKnitting, advanced.ToStage)
	})

	t.Run("skipping stages auto-completes intermediates", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageYarnReceived, 50))

		require.NoError(t, o.RecordProgress(StageWashingFinishing, 10))

		assert.Equal(t, StageWashingFinishing, o.CurrentStage)
		assert.Equal(t, 100, o.StageProgress.Get(StageKnitting))
		assert.Equal(t, 100, o.StageProgress.Get(StageLinking))
		// the departed stage keeps its last reported value
		assert.Equal(t, 50, o.StageProgress.Get(StageYarnReceived))
		assert.Equal(t, 10, o.StageProgress.Get(StageWashingFinishing))
	})

	t.Run("rejects earlier stage", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageLinking, 20))

		err := o.RecordProgress(StageKnitting, 90)
		require.Error(t, err)
		assert.Equal(t, shared.ErrCodeOutOfOrderStage, domainErrorCode(t, err))
		// state untouched
		assert.Equal(t, StageLinking, o.CurrentStage)
	})

	t.Run("rejects invalid stage and percentage", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)

		require.Error(t, o.RecordProgress(Stage("dyeing"), 50))
		require.Error(t, o.RecordProgress(StageKnitting, -1))
		require.Error(t, o.RecordProgress(StageKnitting, 101))
	})

	t.Run("rejects progress on unassigned order", func(t *testing.T) {
		o := createTestOrder(t)
		require.Error(t, o.RecordProgress(StageYarnReceived, 10))
	})
}

func TestOrder_StageStatusOf(t *testing.T) {
	o := createTestOrder(t)
	assignTestSupplier(t, o, 4.00)
	require.NoError(t, o.RecordProgress(StageLinking, 40))

	assert.Equal(t, StageStatusComplete, o.StageStatusOf(StageYarnReceived))
	assert.Equal(t, StageStatusComplete, o.StageStatusOf(StageKnitting))
	assert.Equal(t, StageStatusInProgress, o.StageStatusOf(StageLinking))
	assert.Equal(t, StageStatusPending, o.StageStatusOf(StageWashingFinishing))
	assert.Equal(t, StageStatusPending, o.StageStatusOf(StageReadyToShip))
}

// ============================================
// Completion and cancellation
// ============================================

func TestOrder_Complete(t *testing.T) {
	t.Run("completes at ready_to_ship 100%", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageReadyToShip, 100))
		o.ClearDomainEvents()

		require.True(t, o.ReadyToComplete())
		require.NoError(t, o.Complete())

		assert.Equal(t, WorkflowCompleted, o.WorkflowStatus)
		assert.True(t, o.IsTerminal())

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCompleted, events[0].EventType())
	})

	t.Run("rejects before ready_to_ship", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StagePacking, 100))

		err := o.Complete()
		require.Error(t, err)
		assert.Equal(t, shared.ErrCodeNotReadyToShip, domainErrorCode(t, err))
	})

	t.Run("rejects at ready_to_ship below 100%", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageReadyToShip, 90))

		assert.False(t, o.ReadyToComplete())
		require.Error(t, o.Complete())
	})

	t.Run("rejects on unassigned order", func(t *testing.T) {
		o := createTestOrder(t)
		require.Error(t, o.Complete())
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancels unassigned order", func(t *testing.T) {
		o := createTestOrder(t)

		require.NoError(t, o.Cancel("buyer withdrew"))

		assert.Equal(t, WorkflowCancelled, o.WorkflowStatus)
		assert.Equal(t, "buyer withdrew", o.CancelReason)
		require.NotNil(t, o.CancelledAt)

		events := o.DomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCancelled, events[0].EventType())
	})

	t.Run("cancels assigned order", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.Cancel("supplier capacity issue"))
	})

	t.Run("requires a reason", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.Cancel("")
		require.Error(t, err)
		assert.Equal(t, shared.ErrCodeMissingReason, domainErrorCode(t, err))
	})

	t.Run("rejects once in production", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageYarnReceived, 5))

		require.Error(t, o.Cancel("too late"))
	})

	t.Run("rejects on completed order", func(t *testing.T) {
		o := createTestOrder(t)
		assignTestSupplier(t, o, 4.00)
		require.NoError(t, o.RecordProgress(StageReadyToShip, 100))
		require.NoError(t, o.Complete())

		require.Error(t, o.Cancel("changed mind"))
	})
}

func TestOrder_SetPaymentStatus(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.SetPaymentStatus(PaymentPartial))
	assert.Equal(t, PaymentPartial, o.PaymentStatus)

	require.NoError(t, o.SetPaymentStatus(PaymentPaid))
	assert.Equal(t, PaymentPaid, o.PaymentStatus)

	require.Error(t, o.SetPaymentStatus(PaymentStatus("refunded")))
}

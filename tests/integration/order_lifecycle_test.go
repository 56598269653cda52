// Package integration provides end-to-end order lifecycle tests: negotiation,
// production tracking, quality checks and the outbox-driven notification
// fan-out, all against a real database.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	negotiationapp "github.com/loomline/backend/internal/application/negotiation"
	notificationapp "github.com/loomline/backend/internal/application/notification"
	orderapp "github.com/loomline/backend/internal/application/order"
	productionapp "github.com/loomline/backend/internal/application/production"
	qcapp "github.com/loomline/backend/internal/application/qc"
	"github.com/loomline/backend/internal/domain/identity"
	"github.com/loomline/backend/internal/domain/order"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/infrastructure/cache"
	"github.com/loomline/backend/internal/infrastructure/event"
	"github.com/loomline/backend/internal/infrastructure/persistence"
	"github.com/loomline/backend/internal/infrastructure/persistence/models"
	"github.com/loomline/backend/internal/infrastructure/realtime"
	"github.com/loomline/backend/tests/testutil"
)

// LifecycleSetup wires the full application stack against an in-memory
// database, including the outbox processor so events flow the same way they
// do in production.
type LifecycleSetup struct {
	DB *gorm.DB

	OrderService        *orderapp.OrderService
	NegotiationService  *negotiationapp.NegotiationService
	ProductionService   *productionapp.ProductionService
	QCService           *qcapp.QCService
	NotificationService *notificationapp.NotificationService

	StreamBus *realtime.InMemoryBus
	Processor *event.OutboxProcessor

	Admin    identity.Actor
	Buyer    identity.Actor
	Supplier identity.Actor
}

func NewLifecycleSetup(t *testing.T, qcMode qc.Mode) *LifecycleSetup {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.OrderModel{},
		&models.AssignmentModel{},
		&models.ProductionUpdateModel{},
		&models.QCCheckModel{},
		&models.NotificationModel{},
		&models.OutboxEntryModel{},
	))

	log := zap.NewNop()

	orderRepo := persistence.NewGormOrderRepository(db)
	assignmentRepo := persistence.NewGormAssignmentRepository(db)
	productionUpdateRepo := persistence.NewGormProductionUpdateRepository(db)
	qcCheckRepo := persistence.NewGormQCCheckRepository(db)
	notificationRepo := persistence.NewGormNotificationRepository(db)
	outboxRepo := event.NewGormOutboxRepository(db)

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(serializer)

	orderService := orderapp.NewOrderService(orderRepo, qcCheckRepo, qcMode, log)
	negotiationService := negotiationapp.NewNegotiationService(
		persistence.NewGormNegotiationTransactionScope(db, outboxPublisher), assignmentRepo, log)
	productionService := productionapp.NewProductionService(
		persistence.NewGormProductionTransactionScope(db, outboxPublisher), productionUpdateRepo, qcCheckRepo, qcMode, log)
	qcService := qcapp.NewQCService(qcCheckRepo, orderRepo, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, log)

	streamBus := realtime.NewInMemoryBus(0)
	idempotencyStore := cache.NewInMemoryIdempotencyStore()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(notificationapp.NewOrderEventsHandler(
		notificationRepo, orderRepo, idempotencyStore, streamBus, log,
	))
	require.NoError(t, eventBus.Start(context.Background()))
	t.Cleanup(func() {
		_ = eventBus.Stop(context.Background())
	})

	processorConfig := event.DefaultOutboxProcessorConfig()
	processorConfig.PollInterval = 20 * time.Millisecond
	processorConfig.CleanupEnabled = false
	processor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorConfig, log)
	require.NoError(t, processor.Start(context.Background()))
	t.Cleanup(func() {
		_ = processor.Stop(context.Background())
	})

	return &LifecycleSetup{
		DB:                  db,
		OrderService:        orderService,
		NegotiationService:  negotiationService,
		ProductionService:   productionService,
		QCService:           qcService,
		NotificationService: notificationService,
		StreamBus:           streamBus,
		Processor:           processor,
		Admin:               identity.NewActor(uuid.New(), identity.RoleAdmin),
		Buyer:               identity.NewActor(uuid.New(), identity.RoleBuyer),
		Supplier:            identity.NewActor(uuid.New(), identity.RoleSupplier),
	}
}

// createAssignedOrder drives an order through offer and acceptance so
// production can start.
func (s *LifecycleSetup) createAssignedOrder(t *testing.T, ctx context.Context) uuid.UUID {
	t.Helper()

	created, err := s.OrderService.Create(ctx, orderapp.CreateOrderRequest{
		BuyerID:    s.Buyer.UserID,
		BuyerPrice: decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	offered, err := s.NegotiationService.Offer(ctx, s.Admin, created.ID, negotiationapp.OfferRequest{
		SupplierID:   s.Supplier.UserID,
		OfferedPrice: decimal.NewFromInt(2400),
	})
	require.NoError(t, err)

	_, err = s.NegotiationService.Accept(ctx, s.Supplier, offered.ID)
	require.NoError(t, err)

	return created.ID
}

// advanceToReadyToShip posts progress through every production stage
func (s *LifecycleSetup) advanceToReadyToShip(t *testing.T, ctx context.Context, orderID uuid.UUID) {
	t.Helper()

	stages := []order.Stage{
		order.StageYarnReceived,
		order.StageKnitting,
		order.StageLinking,
		order.StageWashingFinishing,
		order.StageFinalQC,
		order.StagePacking,
		order.StageReadyToShip,
	}
	for _, stage := range stages {
		_, err := s.ProductionService.PostUpdate(ctx, s.Supplier, orderID, productionapp.PostUpdateRequest{
			Stage:                string(stage),
			CompletionPercentage: 100,
		})
		require.NoError(t, err)
	}
}

func TestOrderLifecycle_NegotiationToCompletion(t *testing.T) {
	ctx := context.Background()
	s := NewLifecycleSetup(t, qc.ModeAdvisory)

	orderID := s.createAssignedOrder(t, ctx)

	resp, err := s.OrderService.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "assigned", resp.WorkflowStatus)
	require.NotNil(t, resp.SupplierPrice)
	assert.True(t, resp.SupplierPrice.Equal(decimal.NewFromInt(2400)))
	require.NotNil(t, resp.AdminMargin)
	assert.True(t, resp.AdminMargin.Equal(decimal.NewFromInt(600)))

	s.advanceToReadyToShip(t, ctx, orderID)

	resp, err = s.OrderService.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "in_production", resp.WorkflowStatus)
	assert.Equal(t, string(order.StageReadyToShip), resp.CurrentStage)

	completed, err := s.OrderService.Complete(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.WorkflowStatus)
}

func TestOrderLifecycle_CompleteBlockedBeforeReadyToShip(t *testing.T) {
	ctx := context.Background()
	s := NewLifecycleSetup(t, qc.ModeAdvisory)

	orderID := s.createAssignedOrder(t, ctx)

	_, err := s.ProductionService.PostUpdate(ctx, s.Supplier, orderID, productionapp.PostUpdateRequest{
		Stage:                string(order.StageKnitting),
		CompletionPercentage: 50,
	})
	require.NoError(t, err)

	_, err = s.OrderService.Complete(ctx, orderID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_READY_TO_SHIP")
}

func TestOrderLifecycle_StrictQCGate(t *testing.T) {
	ctx := context.Background()
	s := NewLifecycleSetup(t, qc.ModeStrict)

	orderID := s.createAssignedOrder(t, ctx)
	s.advanceToReadyToShip(t, ctx, orderID)

	// no check recorded yet: completion is held
	_, err := s.OrderService.Complete(ctx, orderID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QC_HOLD")

	// a failing check keeps the hold
	_, err = s.QCService.RecordCheck(ctx, s.Admin, orderID, qcapp.RecordCheckRequest{
		Stage:          string(order.StageFinalQC),
		TotalInspected: 100,
		PassedCount:    60,
		FailedCount:    40,
		Defects: []qcapp.DefectInput{
			{Severity: "major", Count: 40, Description: "linking seams split on the left panel"},
		},
		Notes: "linking seams split on the left panel",
	})
	require.NoError(t, err)

	_, err = s.OrderService.Complete(ctx, orderID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QC_HOLD")

	// a passing re-inspection releases it
	_, err = s.QCService.RecordCheck(ctx, s.Admin, orderID, qcapp.RecordCheckRequest{
		Stage:          string(order.StageFinalQC),
		TotalInspected: 100,
		PassedCount:    100,
		FailedCount:    0,
	})
	require.NoError(t, err)

	completed, err := s.OrderService.Complete(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.WorkflowStatus)
}

func TestOrderLifecycle_StrictQCAdvancementGate(t *testing.T) {
	ctx := context.Background()
	s := NewLifecycleSetup(t, qc.ModeStrict)

	orderID := s.createAssignedOrder(t, ctx)

	_, err := s.ProductionService.PostUpdate(ctx, s.Supplier, orderID, productionapp.PostUpdateRequest{
		Stage:                string(order.StageFinalQC),
		CompletionPercentage: 100,
	})
	require.NoError(t, err)

	// a failing final inspection holds the move into packing
	_, err = s.QCService.RecordCheck(ctx, s.Admin, orderID, qcapp.RecordCheckRequest{
		Stage:          string(order.StageFinalQC),
		TotalInspected: 100,
		PassedCount:    70,
		FailedCount:    30,
		Defects: []qcapp.DefectInput{
			{Severity: "major", Count: 30, Description: "neckline ribbing twisted"},
		},
	})
	require.NoError(t, err)

	_, err = s.ProductionService.PostUpdate(ctx, s.Supplier, orderID, productionapp.PostUpdateRequest{
		Stage:                string(order.StagePacking),
		CompletionPercentage: 20,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QC_HOLD")

	// a passing re-inspection releases the hold
	_, err = s.QCService.RecordCheck(ctx, s.Admin, orderID, qcapp.RecordCheckRequest{
		Stage:          string(order.StageFinalQC),
		TotalInspected: 100,
		PassedCount:    100,
	})
	require.NoError(t, err)

	resp, err := s.ProductionService.PostUpdate(ctx, s.Supplier, orderID, productionapp.PostUpdateRequest{
		Stage:                string(order.StagePacking),
		CompletionPercentage: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, string(order.StagePacking), resp.Stage)
}

func TestOrderLifecycle_OutboxFanOut(t *testing.T) {
	ctx := context.Background()
	s := NewLifecycleSetup(t, qc.ModeAdvisory)

	orderID := s.createAssignedOrder(t, ctx)

	// the accepted offer should fan out to buyer notifications through the
	// outbox processor
	testutil.RequireEventually(t, func() bool {
		n, err := s.NotificationService.CountUnread(ctx, s.Buyer.UserID)
		return err == nil && n > 0
	}, 2*time.Second, 20*time.Millisecond, "buyer never received notifications")

	// and onto the order's realtime stream: offered, accepted, assigned
	testutil.RequireEventually(t, func() bool {
		events, err := s.StreamBus.Replay(ctx, orderID, "", 100)
		return err == nil && len(events) == 3
	}, 2*time.Second, 20*time.Millisecond, "stream never received all events")

	// replay is FIFO and resumable from the last seen stream ID
	events, err := s.StreamBus.Replay(ctx, orderID, "", 100)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	rest, err := s.StreamBus.Replay(ctx, orderID, events[0].StreamID, 100)
	require.NoError(t, err)
	assert.Len(t, rest, len(events)-1)

	// notification listing and read tracking
	list, err := s.NotificationService.List(ctx, s.Buyer.UserID, notificationapp.NotificationListFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, list)

	require.NoError(t, s.NotificationService.MarkRead(ctx, s.Buyer.UserID, list[0].ID))

	updated, err := s.NotificationService.MarkAllRead(ctx, s.Buyer.UserID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, updated, int64(0))

	n, err := s.NotificationService.CountUnread(ctx, s.Buyer.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	mediaapp "github.com/loomline/backend/internal/application/media"
	negotiationapp "github.com/loomline/backend/internal/application/negotiation"
	notificationapp "github.com/loomline/backend/internal/application/notification"
	orderapp "github.com/loomline/backend/internal/application/order"
	productionapp "github.com/loomline/backend/internal/application/production"
	qcapp "github.com/loomline/backend/internal/application/qc"
	"github.com/loomline/backend/internal/domain/qc"
	"github.com/loomline/backend/internal/infrastructure/auth"
	"github.com/loomline/backend/internal/infrastructure/cache"
	"github.com/loomline/backend/internal/infrastructure/config"
	"github.com/loomline/backend/internal/infrastructure/event"
	"github.com/loomline/backend/internal/infrastructure/logger"
	"github.com/loomline/backend/internal/infrastructure/persistence"
	"github.com/loomline/backend/internal/infrastructure/realtime"
	"github.com/loomline/backend/internal/infrastructure/storage"
	"github.com/loomline/backend/internal/interfaces/http/handler"
	"github.com/loomline/backend/internal/interfaces/http/middleware"
	"github.com/loomline/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Loomline Order API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	productionUpdateRepo := persistence.NewGormProductionUpdateRepository(db.DB)
	qcCheckRepo := persistence.NewGormQCCheckRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Outbox publisher saves domain events in the same transaction as the
	// aggregate they belong to
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	negotiationTxScope := persistence.NewGormNegotiationTransactionScope(db.DB, outboxPublisher)
	productionTxScope := persistence.NewGormProductionTransactionScope(db.DB, outboxPublisher)

	// Initialize application services
	orderService := orderapp.NewOrderService(orderRepo, qcCheckRepo, qc.Mode(cfg.QC.Mode), log)
	negotiationService := negotiationapp.NewNegotiationService(negotiationTxScope, assignmentRepo, log)
	productionService := productionapp.NewProductionService(productionTxScope, productionUpdateRepo, qcCheckRepo, qc.Mode(cfg.QC.Mode), log)
	qcService := qcapp.NewQCService(qcCheckRepo, orderRepo, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, log)

	// Photo storage: S3-compatible when configured, otherwise a stub that
	// rejects uploads so the rest of the API keeps working
	var objectStorage mediaapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Storage.EnsureBucket(bucketCtx); err != nil {
			cancelBucket()
			log.Fatal("Failed to prepare storage bucket", zap.Error(err))
		}
		cancelBucket()
		objectStorage = s3Storage
		log.Info("Object storage configured", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("No storage bucket configured, photo uploads disabled")
	}
	photoService := mediaapp.NewPhotoService(objectStorage)

	// JWT verification for incoming requests. Tokens are issued by the
	// identity provider, this service only validates them.
	jwtService := auth.NewJWTService(cfg.JWT)

	// Realtime stream bus: one Redis stream per order for live progress and
	// reconnect replay. Falls back to an in-process bus when disabled.
	var streamBus realtime.Bus
	if cfg.Realtime.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis for realtime streams", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		streamBus = realtime.NewRedisStreamBus(redisClient, cfg.Realtime, log)
		log.Info("Realtime streams enabled", zap.String("prefix", cfg.Realtime.StreamPrefix))
	} else {
		streamBus = realtime.NewInMemoryBus(int(cfg.Realtime.MaxLen))
		log.Info("Realtime streams running in-process")
	}

	// Idempotency store dedupes event fan-out across restarts
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Event bus with the notification fan-out handler: every order, assignment,
	// production and QC event becomes in-app notifications plus a realtime
	// stream entry
	eventBus := event.NewInMemoryEventBus(log)
	fanoutHandler := notificationapp.NewOrderEventsHandler(
		notificationRepo, orderRepo, idempotencyStore, streamBus, log,
	)
	eventBus.Subscribe(fanoutHandler)
	log.Info("Event fan-out registered", zap.Strings("event_types", fanoutHandler.EventTypes()))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor delivers stored events to the bus with retries
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Negotiation expiry sweeper times out offers whose deadline has passed
	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go runExpirySweeper(sweeperCtx, negotiationService, cfg.Negotiation, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness probe outside API versioning, no auth
	engine.GET("/health", healthHandler(db, log))

	// API routes behind JWT authentication
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Auth(jwtService))

	r.Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewAssignmentHandler(negotiationService)).
		Register(handler.NewProductionHandler(productionService)).
		Register(handler.NewQCHandler(qcService)).
		Register(handler.NewNotificationHandler(notificationService)).
		Register(handler.NewMediaHandler(photoService)).
		Register(handler.NewRealtimeHandler(streamBus, orderService)).
		Register(handler.NewSystemHandler(db.DB))

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runExpirySweeper periodically times out open offers past their deadline
func runExpirySweeper(ctx context.Context, svc *negotiationapp.NegotiationService, cfg config.NegotiationConfig, log *zap.Logger) {
	if cfg.SweepInterval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := svc.ExpireOverdue(ctx, cfg.SweepBatch)
			if err != nil {
				log.Error("Expiry sweep failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				log.Info("Expired overdue offers", zap.Int("count", expired))
			}
		}
	}
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

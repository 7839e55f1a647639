package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/actions"
	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	appprocurement "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/procurement"
	apptransfer "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/compliance"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/cache"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/config"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/event"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/logger"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/infrastructure/persistence"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/interfaces/http/handler"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventory transaction core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	clock := shared.SystemClock{}
	idempotencyConfig := shared.IdempotencyConfig{
		TTL:          cfg.Workflow.IdempotencyTTL,
		PendingLease: cfg.Workflow.IdempotencyLease,
	}

	// Redis serves multi-instance deployments; the database store covers the
	// single-instance case without extra infrastructure
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = cache.NewRedisIdempotencyStore(client, idempotencyConfig, clock)
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.RedisAddr()))
	} else {
		idempotencyStore = persistence.NewGormIdempotencyStore(db, idempotencyConfig, clock)
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	bus := event.NewInMemoryBus(log.Named("events"))
	bus.Subscribe(event.NewReorderAlertHandler(log.Named("reorder")), inventory.EventTypeStockBelowReorderPoint)

	scope := persistence.NewGormTransactionScope(db, clock)
	ledger := appinventory.NewLedgerService(scope, bus, clock, log.Named("ledger"))
	usages := appinventory.NewMaterialUsageService(scope, bus, clock, log.Named("usage"))
	orders := appprocurement.NewPurchaseOrderService(scope, bus, clock, log.Named("procurement"))
	transfers := apptransfer.NewTransferService(scope, bus, clock, log.Named("transfer"))

	executor := workflow.NewExecutor(idempotencyStore, shared.AllowAllAuthorizer{}, clock, log.Named("workflow"), workflow.Config{
		MaxAttempts:  cfg.Workflow.MaxAttempts,
		RetryBackoff: cfg.Workflow.RetryBackoff,
	})
	if !cfg.Redis.Enabled {
		// the database idempotency store shares the scope's connection, so the
		// recorded outcome commits in the same transaction as the effects
		executor.WithUnitRunner(scope)
	}
	actions.RegisterAll(executor, actions.Services{
		Ledger:         ledger,
		Usage:          usages,
		PurchaseOrders: orders,
		Transfers:      transfers,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	router.NewRouter(engine).
		Register(handler.NewWorkflowHandler(executor)).
		Register(handler.NewQueryHandler(ledger, usages, orders, transfers)).
		Register(handler.NewComplianceHandler(compliance.NewScorer(), clock)).
		Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

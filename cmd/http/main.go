package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-sales-service/config"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/scheduler"
	"github.com/fekuna/omnipos-sales-service/internal/server"
	"github.com/fekuna/omnipos-sales-service/internal/storage/memory"
	"github.com/fekuna/omnipos-sales-service/internal/tenant"
	"github.com/fekuna/omnipos-sales-service/pkg/broker"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/fekuna/omnipos-sales-service/pkg/search"

	invH "github.com/fekuna/omnipos-sales-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-sales-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-sales-service/internal/inventory/usecase"

	syncH "github.com/fekuna/omnipos-sales-service/internal/reconcile/handler"
	syncListenerPkg "github.com/fekuna/omnipos-sales-service/internal/reconcile/listener"
	syncUCPkg "github.com/fekuna/omnipos-sales-service/internal/reconcile/usecase"

	saleH "github.com/fekuna/omnipos-sales-service/internal/sale/handler"
	saleRepoPkg "github.com/fekuna/omnipos-sales-service/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-sales-service/internal/sale/usecase"

	tenantRepoPkg "github.com/fekuna/omnipos-sales-service/internal/tenant/repository"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}
	defaultLoc, _ := time.LoadLocation(cfg.Server.DefaultTimezone)

	// Money renders as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 3. Initialize Store
	var (
		invRepo    inventory.Repository
		saleRepo   sale.Repository
		tenantRepo tenant.Repository
	)
	switch cfg.Server.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		invRepo, saleRepo, tenantRepo = store.Inventory(), store.Sales(), store.Tenants()
		appLogger.Warn("Using in-memory store, data is lost on restart")
	default:
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		invRepo = invRepoPkg.NewPGRepository(db)
		saleRepo = saleRepoPkg.NewPGRepository(db)
		tenantRepo = tenantRepoPkg.NewPGRepository(db)
	}

	// 4. Initialize Redis
	var locker cache.Locker = cache.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

		locker = redisClient
		tenantRepo = tenantRepoPkg.NewCachedRepository(tenantRepo, redisClient, cfg.Redis.TenantCacheTTL, appLogger.Named("tenant.cache"))
	} else {
		appLogger.Warn("REDIS_ADDR is empty, using process-local locks and uncached tenant settings")
	}

	// 5. Initialize Kafka
	var publisher sale.EventPublisher
	var syncConsumer *broker.KafkaConsumer
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.SalesTopic,
		})
		defer producer.Close()
		publisher = producer

		syncConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.SyncTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer syncConsumer.Close()
		appLogger.Info("Configured Kafka", zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("sales_topic", cfg.Kafka.SalesTopic), zap.String("sync_topic", cfg.Kafka.SyncTopic))
	}

	// 6. Initialize Elasticsearch
	var indexer sale.SearchIndexer
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, sales will not be indexed", zap.Error(err))
		} else {
			indexer = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 7. Initialize UseCases
	tenants := tenant.NewProvider(tenantRepo, defaultLoc)

	invUC := invUCPkg.NewInventoryUseCase(invRepo, locker, inventory.Options{
		StoreTimeout: cfg.Server.StoreTimeout,
		LockTTL:      cfg.Redis.LockTTL,
	}, appLogger.Named("inventory"))

	saleUC := saleUCPkg.NewSaleUseCase(saleRepo, tenants, publisher, indexer, sale.Options{
		StoreTimeout: cfg.Server.StoreTimeout,
		SaleIndex:    cfg.Elastic.SaleIndex,
	}, time.Now, appLogger.Named("sale"))

	syncUC := syncUCPkg.NewReconcileUseCase(invRepo, locker, reconcile.Options{
		StoreTimeout: cfg.Server.StoreTimeout,
		LockTTL:      cfg.Redis.LockTTL,
		Concurrency:  cfg.Sync.Concurrency,
	}, time.Now, appLogger.Named("sync"))

	// 8. Start Listener and Scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if syncConsumer != nil {
		syncListener := syncListenerPkg.NewSyncListener(syncConsumer, syncUC, appLogger.Named("sync.listener"))
		go syncListener.Start(ctx)
	}

	sched := scheduler.NewScheduler(cfg.Scheduler.DailySummaryCron, tenantRepo, tenants, saleUC, publisher, appLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		appLogger.Fatal("Could not start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// 9. Start HTTP Server
	engine := server.NewRouter(server.Handlers{
		Inventory: invH.NewInventoryHandler(invUC, appLogger.Named("inventory.handler")),
		Sale:      saleH.NewSaleHandler(saleUC, appLogger.Named("sale.handler")),
		Sync:      syncH.NewSyncHandler(syncUC, appLogger.Named("sync.handler")),
	}, server.Options{
		ShowErrorDetail: cfg.ShowErrorDetail(),
		ReleaseMode:     !cfg.IsDevelopment(),
	}, appLogger.Named("router"))

	srv := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/chronos-erp/flowledger/internal/adapter/http"
	"github.com/chronos-erp/flowledger/internal/adapter/http/handler"
	"github.com/chronos-erp/flowledger/internal/adapter/http/middleware"
	"github.com/chronos-erp/flowledger/internal/adapter/repository/docstore"
	redisRepo "github.com/chronos-erp/flowledger/internal/adapter/repository/redis"
	"github.com/chronos-erp/flowledger/internal/infrastructure/config"
	"github.com/chronos-erp/flowledger/internal/infrastructure/logging"
	"github.com/chronos-erp/flowledger/internal/infrastructure/metrics"
	"github.com/chronos-erp/flowledger/internal/infrastructure/postgres"
	"github.com/chronos-erp/flowledger/internal/infrastructure/redis"
	"github.com/chronos-erp/flowledger/internal/ingest"
	"github.com/chronos-erp/flowledger/internal/ledger"
	"github.com/chronos-erp/flowledger/internal/persist"
	"github.com/chronos-erp/flowledger/internal/store"
	"github.com/chronos-erp/flowledger/internal/store/memory"
	pgstore "github.com/chronos-erp/flowledger/internal/store/postgres"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Logger = logger

	ctx := context.Background()

	var (
		docStore    store.Store
		pool        *pgxpool.Pool
		redisClient *goredis.Client
	)

	switch cfg.StoreBackend {
	case "memory":
		docStore = memory.New()
		logger.Info().Msg("using in-memory document store")
	default:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		pool, err = postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		logger.Info().Msg("connected to postgres")

		docStore = pgstore.New(pool)
	}

	var (
		locker           ingest.Locker = ingest.NewLocalLocker()
		idempotencyStore middleware.IdempotencyStore
	)
	if cfg.StoreBackend != "memory" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")

		locker = redisRepo.NewJobLocker(redisClient, cfg.JobLockTTL)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	m := metrics.New()

	engine := ledger.New(ledger.Config{
		Store: docStore,
		Pools: ledger.SettlementAccounts{
			Principal: cfg.PrincipalAccount,
			Freight:   cfg.FreightAccount,
			Margin:    cfg.MarginAccount,
		},
		MaxRetries: cfg.EngineMaxRetries,
		Metrics:    m,
		Logger:     logger,
	})

	jobs := docstore.NewJobRepository(docStore)
	runner := ingest.NewRunner(ingest.RunnerConfig{
		Persister:       persist.New(docStore, cfg.MaxBatchOps, m, logger),
		Locker:          locker,
		Jobs:            jobs,
		DefaultCurrency: cfg.DefaultCurrency,
		Metrics:         m,
		Logger:          logger,
	})

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(engine),
		TransferHandler:  handler.NewTransferHandler(engine),
		SaleHandler:      handler.NewSaleHandler(engine),
		DebtHandler:      handler.NewDebtHandler(engine),
		IngestionHandler: handler.NewIngestionHandler(runner, jobs),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	catalogapp "github.com/developerabhi04/order-service/internal/catalog/application"
	catalogpg "github.com/developerabhi04/order-service/internal/catalog/infrastructure/postgres"
	"github.com/developerabhi04/order-service/internal/config"
	"github.com/developerabhi04/order-service/internal/order/application"
	orderhttp "github.com/developerabhi04/order-service/internal/order/infrastructure/http"
	orderkafka "github.com/developerabhi04/order-service/internal/order/infrastructure/kafka"
	orderpg "github.com/developerabhi04/order-service/internal/order/infrastructure/postgres"
	"github.com/developerabhi04/order-service/pkg/cache"
	"github.com/developerabhi04/order-service/pkg/logging"
	"github.com/developerabhi04/order-service/pkg/metrics"
	"github.com/developerabhi04/order-service/pkg/outbox"
	"github.com/developerabhi04/order-service/pkg/shutdown"
	"github.com/developerabhi04/order-service/pkg/tracing"
)

func main() {
	log := logging.New("order-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()

	tp, err := tracing.Init(ctx, "order-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()

	// Gateways
	repo := orderpg.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}
	cacheGateway := cache.NewRedis(log, rdb, cfg.CacheTTL, metrics.NewCacheMetrics("order_service"))
	invalidator := cache.NewInvalidator(cacheGateway)
	adjuster := catalogapp.NewAdjuster(log, catalogpg.NewRepository(log, pool))

	svc := application.NewService(log, repo, adjuster, cacheGateway, invalidator)
	handler := orderhttp.NewHandler(log, svc)

	// Outbox relay
	writer := orderkafka.NewWriter(cfg.KafkaBrokers)
	defer func() { _ = writer.Close() }()
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, orderpg.NewOutboxStore(log, pool), dispatch, "order-service-relay")
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// HTTP server
	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	r.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("order-service shutdown complete")
}

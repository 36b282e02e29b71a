package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Storefront/internal/config"
	"Storefront/internal/shop"
	"Storefront/internal/snapshot"
	"Storefront/pkg/kit"
)

func main() {
	service := "storefront"

	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	kv, closeKV, err := openSnapshots(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open snapshot backend failed", zap.String("backend", cfg.Snapshot.Backend), zap.Error(err))
	}
	defer closeKV()

	store, err := shop.Open(ctx, kv, logger, shop.WithStrictStock(cfg.StrictStock))
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &shop.Server{
		Store:    store,
		Tokens:   shop.NewTokenMaker(cfg.Admin.TokenSecret),
		TokenTTL: cfg.Admin.TokenTTL,
		Log:      logger,
	}
	h := shop.NewHandler(s, shop.HTTPDeps{
		Log:            logger,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(ctx, cfg.HTTPAddr, h, logger, cfg.ShutdownTimeout); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}

func openSnapshots(ctx context.Context, cfg config.Config, logger *zap.Logger) (snapshot.KV, func(), error) {
	noop := func() {}

	switch cfg.Snapshot.Backend {
	case config.BackendMemory:
		logger.Warn("memory snapshot backend: state is lost on restart")
		return snapshot.NewMemKV(), noop, nil

	case config.BackendFile:
		kv, err := snapshot.NewFileKV(cfg.Snapshot.DataDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("file snapshot backend", zap.String("dir", cfg.Snapshot.DataDir))
		return kv, noop, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv := snapshot.NewRedisKV(client, cfg.Snapshot.KeyPrefix)
		if err := kv.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("redis snapshot backend", zap.String("addr", cfg.Redis.Addr))
		return kv, func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		if cfg.Postgres.AutoMigrate {
			if err := snapshot.Migrate(ctx, cfg.Postgres.DSN); err != nil {
				return nil, noop, err
			}
		}
		db, err := snapshot.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("postgres snapshot backend")
		return snapshot.NewPostgresKV(db), func() { _ = db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civictracker/backend/internal/api/handler"
	"civictracker/backend/internal/blob"
	"civictracker/backend/internal/complaint"
	"civictracker/backend/internal/config"
	"civictracker/backend/internal/feed"
	"civictracker/backend/internal/logger"
	"civictracker/backend/internal/metrics"
	"civictracker/backend/internal/report"
	"civictracker/backend/internal/snapshot"
	"civictracker/backend/internal/storage"

	gcs "cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, *redis.Client, error) {
	// 1. PostgreSQL
	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	// 2. Migrations
	if err := storage.AutoMigrate(db); err != nil {
		return nil, nil, err
	}

	// 3. Redis is optional: without it the snapshot is read per request
	// and events only reach dashboards connected to this instance.
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, snapshot cache and cross-instance feed disabled")
		return db, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}

	log.Info("database and redis connections established, migrations complete")
	return db, rdb, nil
}

func setupUploader(ctx context.Context, cfg *config.Config, log *slog.Logger) (blob.Uploader, func(), error) {
	if cfg.GCSBucket == "" {
		log.Warn("GCS_BUCKET not set, image uploads disabled")
		return nil, func() {}, nil
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := blob.CheckBucket(ctx, client, cfg.GCSBucket); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return blob.NewGCSUploader(client, cfg.GCSBucket, log), func() { _ = client.Close() }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON, Dir: cfg.LogDir, FileName: "server.log"})
	if err != nil {
		slog.Error("failed to initialise logger", "error", err)
		os.Exit(1)
	}
	log.Info("starting civic tracker backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	db, rdb, err := setupDependencies(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise storage", "error", err)
		os.Exit(1)
	}
	uploader, closeUploader, err := setupUploader(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise blob storage", "error", err)
		os.Exit(1)
	}
	defer closeUploader()

	m := metrics.New(prometheus.DefaultRegisterer)
	store := storage.NewStorageService(db, cfg.StoreTimeout, log)
	cache := snapshot.NewCache(store, rdb, cfg.SnapshotTTL, m, log)

	// 2. Live feed
	hub := feed.NewHub(log)
	go hub.Run(ctx)
	publisher := feed.NewPublisher(rdb, hub, log)
	if err := publisher.Listen(ctx); err != nil {
		log.Error("failed to subscribe to events", "error", err)
		os.Exit(1)
	}

	opts := []complaint.Option{
		complaint.WithInvalidator(cache),
		complaint.WithNotifier(publisher),
		complaint.WithMetrics(m),
	}
	if uploader != nil {
		opts = append(opts, complaint.WithUploader(uploader))
	}
	manager := complaint.NewManager(store, log, opts...)

	// 3. Scheduled analytics
	scheduler := cron.New()
	job := report.NewJob(cache, store, m, log)
	if _, err := job.Schedule(scheduler, cfg.ReportSchedule); err != nil {
		log.Error("failed to schedule report", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// 4. HTTP
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(manager, cache, hub, cfg.AllowedOrigins(), log)
	r := handler.NewRouter(h, handler.RouterConfig{
		AllowedOrigins:      cfg.AllowedOrigins(),
		JWTSecret:           cfg.AuthJWTSecret,
		SubmitRatePerMinute: cfg.SubmitRatePerMinute,
		Metrics:             promhttp.Handler(),
	})

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
	<-scheduler.Stop().Done()

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("stopped")
}

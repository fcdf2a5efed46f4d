package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/article-catalogue/internal/config"
	"github.com/tuanvumaihuynh/article-catalogue/internal/event"
	"github.com/tuanvumaihuynh/article-catalogue/internal/log"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/article-catalogue/internal/telemetry"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running projector application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		HTTP  config.HTTP
		Kafka config.Kafka
		Store config.Store
		Otel  config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	store, closeStore, err := storage.OpenArticleStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("error opening article store: %w", err)
	}
	defer closeStore()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	reg := telemetry.NewRegistry()
	cleanupMetrics, err := telemetry.ServeMetrics(ctx, logger, cfg.HTTP.Port, reg)
	if err != nil {
		return fmt.Errorf("error serving metrics: %w", err)
	}
	defer func() {
		if err := cleanupMetrics(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down metrics server", slog.Any("error", err))
		}
	}()

	svc := event.New(cfg.Kafka.Topic, logger, kafkaConsumer, store.Articles, event.NewMetrics(reg))
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running event service: %w", err)
	}
	logger.InfoContext(ctx, "event service started", slog.String("topic", cfg.Kafka.Topic))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "event service is shutting down")
	cleanup()
	logger.InfoContext(ctx, "event service is stopped")

	return nil
}

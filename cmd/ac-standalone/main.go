package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuanvumaihuynh/article-catalogue/internal/config"
	"github.com/tuanvumaihuynh/article-catalogue/internal/event"
	"github.com/tuanvumaihuynh/article-catalogue/internal/http"
	"github.com/tuanvumaihuynh/article-catalogue/internal/log"
	"github.com/tuanvumaihuynh/article-catalogue/internal/service"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/article-catalogue/internal/telemetry"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/cmdutil"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
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

	if err := storage.Migrate(ctx, cfg.Store); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	store, closeStore, err := storage.OpenArticleStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("error opening article store: %w", err)
	}
	defer closeStore()

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	reg := telemetry.NewRegistry()
	metrics := event.NewMetrics(reg)
	publisher := event.NewMetricsPublisher(event.NewMQPublisher(cfg.Kafka.Topic, kafkaProducer, v), metrics)
	articleService := service.NewArticleService(store.Articles, publisher, service.NewUUIDv7)

	interruptChan := cmdutil.InterruptChan()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		svc := event.New(cfg.Kafka.Topic, logger, kafkaConsumer, store.Articles, metrics)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			return fmt.Errorf("error running event service: %w", err)
		}
		logger.InfoContext(ctx, "event service started")

		select {
		case <-interruptChan:
		case <-gctx.Done():
		}

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
		return nil
	})

	g.Go(func() error {
		svc := http.New(cfg.HTTP, logger, reg, articleService, store.Health)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			return fmt.Errorf("error running http service: %w", err)
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		select {
		case <-interruptChan:
		case <-gctx.Done():
		}

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
		return nil
	})

	return g.Wait()
}

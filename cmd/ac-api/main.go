package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/docgen"

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

var routes = flag.Bool("routes", false, "print the route documentation as markdown and exit")

func main() {
	flag.Parse()

	if *routes {
		if err := printRoutes(); err != nil {
			fmt.Printf("error generating route docs: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Printf("error running api application: %v\n", err)
		os.Exit(1)
	}
}

func printRoutes() error {
	cfg, err := config.New[config.HTTP]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := slog.New(slog.DiscardHandler)
	r, err := http.New(cfg, logger, telemetry.NewRegistry(), nil, nil).Router()
	if err != nil {
		return err
	}

	fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
		ProjectPath: "github.com/tuanvumaihuynh/article-catalogue",
		Intro:       "Article catalogue REST API. Writes are published to the shop topic.",
	}))
	return nil
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

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	reg := telemetry.NewRegistry()
	publisher := event.NewMetricsPublisher(
		event.NewMQPublisher(cfg.Kafka.Topic, kafkaProducer, v),
		event.NewMetrics(reg),
	)
	articleService := service.NewArticleService(store.Articles, publisher, service.NewUUIDv7)

	svc := http.New(cfg.HTTP, logger, reg, articleService, store.Health)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}
	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "http service is stopped")

	return nil
}

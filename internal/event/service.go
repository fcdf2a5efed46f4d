package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/article-catalogue/internal/model"
	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/mq"
)

// ArticleWriter is the write side of the article store.
type ArticleWriter interface {
	UpsertArticle(ctx context.Context, article model.Article) error
	DeleteArticle(ctx context.Context, id string) error
}

// Service is the projector: it consumes operations from the shop topic and
// applies them to the article store.
type Service struct {
	topic      string
	logger     *slog.Logger
	mqConsumer mq.Consumer
	articles   ArticleWriter
	metrics    *Metrics
}

// New creates a new event service.
func New(
	topic string,
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	articles ArticleWriter,
	metrics *Metrics,
) *Service {
	return &Service{
		topic:      topic,
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
		articles:   articles,
		metrics:    metrics,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(s.topic, s.handleShopMessage); err != nil {
		return nil, fmt.Errorf("register shop handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) handleShopMessage(ctx context.Context, msg mq.ConsumeMsg) error {
	var op Operation
	if err := json.Unmarshal(msg.Payload, &op); err != nil {
		return fmt.Errorf("unmarshal operation: %w: %w", mq.ErrSkipRecord, err)
	}

	err := s.Apply(ctx, op)
	s.metrics.recordApply(op, err)
	if errors.Is(err, ErrMalformedOperation) {
		return fmt.Errorf("apply operation: %w: %w", mq.ErrSkipRecord, err)
	}
	if err != nil {
		return fmt.Errorf("apply operation: %w", err)
	}

	return nil
}

package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/article-catalogue/internal/config"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/msgheader"
)

// ConsumeMsg is a record handed to a HandlerFunc.
type ConsumeMsg struct {
	Topic   string
	Key     []byte
	Payload []byte
}

type HandlerFunc func(ctx context.Context, msg ConsumeMsg) error

type CleanupFunc func()

type Consumer interface {
	RegisterHandler(topic string, handler HandlerFunc) error
	Run(ctx context.Context) (CleanupFunc, error)
}

var _ Consumer = (*KafkaConsumer)(nil)

// ErrSkipRecord marks a handler error as permanent: the record is logged and
// committed past instead of being redelivered.
var ErrSkipRecord = errors.New("skip record")

type KafkaConsumer struct {
	cl           *kgo.Client
	handlers     map[string]HandlerFunc
	log          *slog.Logger
	retryBackoff time.Duration
}

func NewKafkaConsumer(ctx context.Context, cfg config.Kafka, logger *slog.Logger) (*KafkaConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
		kgo.AllowAutoTopicCreation(),
		kgo.WithContext(ctx),
		kgo.WithHooks(kafkaHooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return &KafkaConsumer{
		cl:           cl,
		handlers:     make(map[string]HandlerFunc),
		log:          logger.With(slog.String("component", "kafka_consumer")),
		retryBackoff: cfg.RetryBackoff,
	}, nil
}

func (c *KafkaConsumer) RegisterHandler(topic string, handler HandlerFunc) error {
	if _, exists := c.handlers[topic]; exists {
		return fmt.Errorf("handler for topic %s already registered", topic)
	}

	c.cl.AddConsumeTopics(topic)
	c.handlers[topic] = handler
	return nil
}

func (c *KafkaConsumer) Run(ctx context.Context) (CleanupFunc, error) {
	if len(c.handlers) == 0 {
		return nil, errors.New("no handler registered")
	}

	ctx, cancel := context.WithCancel(ctx)
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			fetches := c.cl.PollFetches(ctx)
			if fetches.IsClientClosed() {
				return
			}
			if errs := fetches.Errors(); len(errs) > 0 && !errors.Is(errs[0].Err, context.Canceled) {
				c.log.ErrorContext(ctx, "error fetching messages",
					slog.Any("error", errs),
				)
			}

			handled, rewind := c.handleRecords(ctx, fetches.Records())
			if len(rewind) > 0 {
				c.cl.SetOffsets(rewind)
			}
			if len(handled) > 0 {
				if err := c.cl.CommitRecords(ctx, handled...); err != nil {
					c.log.ErrorContext(ctx, "error committing offsets",
						slog.Any("error", err),
					)
				}
			}
			c.cl.AllowRebalance()

			if len(rewind) > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.retryBackoff):
				}
			}
		}
	}()

	cleanup := func() {
		cancel()
		<-doneChan
	}

	return cleanup, nil
}

// handleRecords runs records through their handlers in order. A partition
// stops at its first record that failed with a retryable error; rewind holds
// that record's position so it is fetched again. handled lists the records
// that are safe to commit.
func (c *KafkaConsumer) handleRecords(ctx context.Context, recs []*kgo.Record) (handled []*kgo.Record, rewind map[string]map[int32]kgo.EpochOffset) {
	rewind = map[string]map[int32]kgo.EpochOffset{}

	for _, rec := range recs {
		if _, stalled := rewind[rec.Topic][rec.Partition]; stalled {
			continue
		}

		if err := c.handleRecord(ctx, rec); err != nil {
			if rewind[rec.Topic] == nil {
				rewind[rec.Topic] = map[int32]kgo.EpochOffset{}
			}
			rewind[rec.Topic][rec.Partition] = kgo.EpochOffset{Epoch: rec.LeaderEpoch, Offset: rec.Offset}
			continue
		}

		handled = append(handled, rec)
	}

	return handled, rewind
}

// handleRecord returns an error only when the record must be redelivered.
func (c *KafkaConsumer) handleRecord(ctx context.Context, rec *kgo.Record) (retryErr error) {
	ctx = msgheader.ExtractContextFromRecord(ctx, rec)
	ctx, span := tracer.Start(ctx, "KafkaConsumer.Handle",
		trace.WithAttributes(
			attribute.String("topic", rec.Topic),
			attribute.Int64("partition", int64(rec.Partition)),
			attribute.Int64("offset", rec.Offset),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	defer span.End()

	// Panicking records are skipped, not redelivered.
	defer func() {
		if rvr := recover(); rvr != nil {
			span.RecordError(fmt.Errorf("panic: %v", rvr))
			span.SetStatus(codes.Error, "panic in handler")

			c.log.ErrorContext(ctx, "panic in message handler",
				slog.String("topic", rec.Topic),
				slog.Any("recover", rvr),
				slog.String("stack", string(debug.Stack())),
			)
			retryErr = nil
		}
	}()

	fn, exists := c.handlers[rec.Topic]
	if !exists {
		c.log.WarnContext(ctx, "no handler registered for topic",
			slog.String("topic", rec.Topic),
		)
		return nil
	}

	msg := ConsumeMsg{
		Topic:   rec.Topic,
		Key:     rec.Key,
		Payload: rec.Value,
	}
	err := fn(ctx, msg)
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "handler failed")

	if errors.Is(err, ErrSkipRecord) {
		c.log.ErrorContext(ctx, "skipping message",
			slog.String("topic", rec.Topic),
			slog.String("key", string(rec.Key)),
			slog.Int64("offset", rec.Offset),
			slog.Any("error", err),
		)
		return nil
	}

	c.log.WarnContext(ctx, "error handling message, will retry",
		slog.String("topic", rec.Topic),
		slog.String("key", string(rec.Key)),
		slog.Int64("offset", rec.Offset),
		slog.Any("error", err),
	)
	return err
}

func (c *KafkaConsumer) Close() {
	c.cl.Close()
}

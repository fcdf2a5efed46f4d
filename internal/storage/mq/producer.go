package mq

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/article-catalogue/internal/config"
)

// ProduceMsg is a single record to publish.
type ProduceMsg struct {
	// Topic falls back to the producer's default topic when empty.
	Topic string
	// Key selects the partition; records with equal keys keep their relative order.
	Key     string
	Headers map[string]string
	Payload []byte
	// Attributes describe the payload on the produce span.
	Attributes []attribute.KeyValue
}

type Producer interface {
	// Produce blocks until the broker acknowledges the message or ctx is done.
	Produce(ctx context.Context, msg ProduceMsg) error
}

var _ Producer = (*KafkaProducer)(nil)

type KafkaProducer struct {
	cl           *kgo.Client
	defaultTopic string
}

func NewKafkaProducer(ctx context.Context, cfg config.Kafka) (*KafkaProducer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
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

	return &KafkaProducer{cl: cl, defaultTopic: cfg.Topic}, nil
}

func (p *KafkaProducer) Produce(ctx context.Context, msg ProduceMsg) error {
	record := buildProduceRecord(msg)
	topic := record.Topic
	if topic == "" {
		topic = p.defaultTopic
	}

	ctx, span := tracer.Start(ctx, topic+" publish",
		trace.WithAttributes(produceAttributes(topic, msg)...),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
	defer span.End()

	acked, err := p.cl.ProduceSync(ctx, record).First()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to produce message")
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	span.SetAttributes(
		semconv.MessagingDestinationPartitionID(strconv.Itoa(int(acked.Partition))),
		semconv.MessagingKafkaMessageOffset(int(acked.Offset)),
	)
	span.SetStatus(codes.Ok, "")
	return nil
}

func (p *KafkaProducer) Close() {
	p.cl.Close()
}

func produceAttributes(topic string, msg ProduceMsg) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3+len(msg.Attributes))
	attrs = append(attrs,
		semconv.MessagingSystemKafka,
		semconv.MessagingDestinationName(topic),
	)
	if msg.Key != "" {
		attrs = append(attrs, semconv.MessagingKafkaMessageKey(msg.Key))
	}
	return append(attrs, msg.Attributes...)
}

// buildProduceRecord orders headers by key so records are reproducible.
func buildProduceRecord(msg ProduceMsg) *kgo.Record {
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	headers := make([]kgo.RecordHeader, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kgo.RecordHeader{
			Key:   k,
			Value: []byte(msg.Headers[k]),
		})
	}

	r := &kgo.Record{
		Topic:   msg.Topic,
		Value:   msg.Payload,
		Headers: headers,
	}
	if msg.Key != "" {
		r.Key = []byte(msg.Key)
	}

	return r
}

package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tuanvumaihuynh/article-catalogue/internal/storage/mq"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/msgheader"
	"github.com/tuanvumaihuynh/article-catalogue/pkg/validator"
)

// ErrInvalidOperation is returned when an operation fails validation before publishing.
// Validator errors are flattened into its message, not wrapped.
var ErrInvalidOperation = errors.New("invalid operation")

// Publisher sends operations to the event bus.
type Publisher interface {
	Publish(ctx context.Context, op Operation) error
}

var _ Publisher = (*MQPublisher)(nil)

// MQPublisher publishes operations as JSON records on a single topic.
type MQPublisher struct {
	topic     string
	producer  mq.Producer
	validator validator.Validator
}

func NewMQPublisher(topic string, producer mq.Producer, validator validator.Validator) *MQPublisher {
	return &MQPublisher{
		topic:     topic,
		producer:  producer,
		validator: validator,
	}
}

func (p *MQPublisher) Publish(ctx context.Context, op Operation) error {
	if err := p.validate(op); err != nil {
		return err
	}

	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}

	msg := mq.ProduceMsg{
		Topic:   p.topic,
		Key:     op.Key(),
		Headers: msgheader.BuildHeaders(ctx),
		Payload: payload,
		Attributes: []attribute.KeyValue{
			attribute.String("catalogue.domain", string(op.Domain)),
			attribute.String("catalogue.action", string(op.Action)),
		},
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("produce operation: %w", err)
	}

	return nil
}

func (p *MQPublisher) validate(op Operation) error {
	if err := p.validator.Validate(op); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}

	if op.Domain != DomainArticle {
		return nil
	}

	article, err := op.Article()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	if err := p.validator.Validate(article); err != nil {
		return fmt.Errorf("%w: article payload: %v", ErrInvalidOperation, err)
	}

	return nil
}

package event

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics counts operations flowing through the publisher and the projector.
type Metrics struct {
	publishedTotal  *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
	appliedTotal    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		publishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogue_events_published_total",
				Help: "Total number of operations published to the event bus",
			},
			[]string{"domain", "action", "status"},
		),
		publishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalogue_events_publish_duration_seconds",
				Help:    "Time spent waiting for the broker to acknowledge an operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"domain", "action"},
		),
		appliedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogue_events_applied_total",
				Help: "Total number of operations consumed and applied to the article store",
			},
			[]string{"domain", "action", "status"},
		),
	}
}

func (m *Metrics) recordPublish(op Operation, duration time.Duration, err error) {
	m.publishedTotal.WithLabelValues(string(op.Domain), string(op.Action), statusOf(err)).Inc()
	m.publishDuration.WithLabelValues(string(op.Domain), string(op.Action)).Observe(duration.Seconds())
}

func (m *Metrics) recordApply(op Operation, err error) {
	m.appliedTotal.WithLabelValues(string(op.Domain), string(op.Action), statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

// MetricsPublisher wraps a Publisher with metrics collection.
type MetricsPublisher struct {
	publisher Publisher
	metrics   *Metrics
}

func NewMetricsPublisher(publisher Publisher, metrics *Metrics) Publisher {
	return &MetricsPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricsPublisher) Publish(ctx context.Context, op Operation) error {
	start := time.Now()
	err := p.publisher.Publish(ctx, op)
	p.metrics.recordPublish(op, time.Since(start), err)

	return err
}

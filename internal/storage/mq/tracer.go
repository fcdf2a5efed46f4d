package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// kafkaHooks traces produce and fetch calls. It reads the global tracer
// provider when called, so call it after telemetry is initialised.
func kafkaHooks() []kgo.Hook {
	return kotel.NewKotel(kotel.WithTracer(kotel.NewTracer())).Hooks()
}

package telemetry_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/article-catalogue/internal/telemetry"
)

func TestNewRegistry(t *testing.T) {
	reg := telemetry.NewRegistry()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "go_goroutines")
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "projector_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	h := telemetry.MetricsHandler(reg)

	t.Run("Should expose registered collectors", func(t *testing.T) {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "projector_test_total 1")
	})

	t.Run("Should not serve other paths", func(t *testing.T) {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/articles", nil))

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestServeMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cleanup, err := telemetry.ServeMetrics(context.Background(), logger, 0, prometheus.NewRegistry())
	require.NoError(t, err)

	assert.NoError(t, cleanup(context.Background()))
}

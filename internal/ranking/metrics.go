package ranking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Metrics instruments the search pipeline. Instrument-creation failures
// are logged and leave the instrument nil; recording checks for nil so
// a broken meter never takes down a request.
type Metrics struct {
	searchDuration metric.Float64Histogram
	searchResults  metric.Int64Histogram
	searchErrors   metric.Int64Counter
	logger         *zap.Logger
}

func NewMetrics(meter metric.Meter, logger *zap.Logger) *Metrics {
	m := &Metrics{logger: logger}
	var err error

	m.searchDuration, err = meter.Float64Histogram(
		"rankd.search.duration_seconds",
		metric.WithDescription("End-to-end command search latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Warn("failed to create search duration histogram", zap.Error(err))
	}

	m.searchResults, err = meter.Int64Histogram(
		"rankd.search.results",
		metric.WithDescription("Ranked districts returned per search"),
	)
	if err != nil {
		logger.Warn("failed to create search results histogram", zap.Error(err))
	}

	m.searchErrors, err = meter.Int64Counter(
		"rankd.search.errors_total",
		metric.WithDescription("Failed command searches"),
	)
	if err != nil {
		logger.Warn("failed to create search errors counter", zap.Error(err))
	}

	return m
}

func (m *Metrics) RecordSearch(ctx context.Context, intent Intent, duration time.Duration, results int, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("intent", string(intent)))
	if err != nil {
		if m.searchErrors != nil {
			m.searchErrors.Add(ctx, 1, attrs)
		}
		return
	}
	if m.searchDuration != nil {
		m.searchDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.searchResults != nil {
		m.searchResults.Record(ctx, int64(results), attrs)
	}
}

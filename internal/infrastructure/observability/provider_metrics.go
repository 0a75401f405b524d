package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type providerInstruments struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	providerOnce    sync.Once
	providerMetrics *providerInstruments
)

func ensureProviderMetrics() *providerInstruments {
	providerOnce.Do(func() {
		meter := otel.Meter(instrumentationName)

		requestCount, err := meter.Int64Counter(
			"provider.request.count",
			metric.WithDescription("Number of outbound provider API requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"provider.request.duration",
			metric.WithDescription("Outbound provider API request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"provider.request.errors",
			metric.WithDescription("Number of failed outbound provider API requests"),
		)
		if err != nil {
			return
		}
		rateLimitWait, err := meter.Float64Histogram(
			"provider.rate_limit.wait",
			metric.WithDescription("Time spent waiting for a provider rate limiter in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}

		providerMetrics = &providerInstruments{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
			rateLimitWait:   rateLimitWait,
		}
	})
	return providerMetrics
}

// RecordProviderCall records one outbound request to an external API
func RecordProviderCall(ctx context.Context, provider, operation string, statusCode int, duration time.Duration, err error) {
	m := ensureProviderMetrics()
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.Int("status_code", statusCode),
	}
	m.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordProviderRateLimitWait records time spent blocked on a provider limiter
func RecordProviderRateLimitWait(ctx context.Context, provider string, wait time.Duration) {
	m := ensureProviderMetrics()
	if m == nil {
		return
	}
	m.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attribute.String("provider", provider)))
}

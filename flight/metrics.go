package flight

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// serviceOptions holds constructor options for Service.
type serviceOptions struct {
	meterProvider metric.MeterProvider
}

func defaultServiceOptions() *serviceOptions {
	return &serviceOptions{
		meterProvider: noop.NewMeterProvider(),
	}
}

// WithMeterProvider instruments the service with the given provider.
// Without it, metrics are no-ops.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *serviceOptions) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// metrics records cache outcomes per Serve call.
type metrics struct {
	requests     metric.Int64Counter
	renderErrors metric.Int64Counter
}

var (
	hitAttrs       = metric.WithAttributes(attribute.String("result", "hit"))
	missAttrs      = metric.WithAttributes(attribute.String("result", "miss"))
	coalescedAttrs = metric.WithAttributes(attribute.String("result", "coalesced"))
)

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("github.com/jonwraymond/fragcache/flight")

	requests, err := meter.Int64Counter(
		"fragment.cache.requests",
		metric.WithDescription("Fragment cache lookups by result"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	renderErrors, err := meter.Int64Counter(
		"fragment.cache.render.errors",
		metric.WithDescription("Failed fragment renders"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		requests:     requests,
		renderErrors: renderErrors,
	}, nil
}

func (m *metrics) recordHit(ctx context.Context) {
	m.requests.Add(ctx, 1, hitAttrs)
}

func (m *metrics) recordMiss(ctx context.Context) {
	m.requests.Add(ctx, 1, missAttrs)
}

func (m *metrics) recordCoalesced(ctx context.Context) {
	m.requests.Add(ctx, 1, coalescedAttrs)
}

func (m *metrics) recordRenderError(ctx context.Context) {
	m.renderErrors.Add(ctx, 1)
}

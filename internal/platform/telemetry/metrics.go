package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "cardsync"

// Replication counts publish/consume outcomes of the change replication path.
// A nil *Replication is valid and records nothing.
type Replication struct {
	published      metric.Int64Counter
	deliveryFailed metric.Int64Counter
	suppressed     metric.Int64Counter
	applied        metric.Int64Counter
	applyFailed    metric.Int64Counter
}

func NewReplication(provider metric.MeterProvider) (*Replication, error) {
	meter := resolveMeter(provider)

	var (
		r   Replication
		err error
	)

	r.published, err = meter.Int64Counter(
		"replication.events.published",
		metric.WithDescription("Number of change events handed to the transport"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create replication.events.published counter: %w", err)
	}

	r.deliveryFailed, err = meter.Int64Counter(
		"replication.delivery.failed",
		metric.WithDescription("Number of change events the transport rejected or timed out on"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create replication.delivery.failed counter: %w", err)
	}

	r.suppressed, err = meter.Int64Counter(
		"replication.echo.suppressed",
		metric.WithDescription("Number of self-authored change events discarded on receipt"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create replication.echo.suppressed counter: %w", err)
	}

	r.applied, err = meter.Int64Counter(
		"replication.events.applied",
		metric.WithDescription("Number of remote change events applied to local storage"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create replication.events.applied counter: %w", err)
	}

	r.applyFailed, err = meter.Int64Counter(
		"replication.apply.failed",
		metric.WithDescription("Number of remote change events that failed to apply"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create replication.apply.failed counter: %w", err)
	}

	return &r, nil
}

func (r *Replication) Published(ctx context.Context, topic string, operation string) {
	if r == nil {
		return
	}
	r.published.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("operation", operation),
	))
}

func (r *Replication) DeliveryFailed(ctx context.Context, topic string, operation string) {
	if r == nil {
		return
	}
	r.deliveryFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("operation", operation),
	))
}

func (r *Replication) Suppressed(ctx context.Context, topic string) {
	if r == nil {
		return
	}
	r.suppressed.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (r *Replication) Applied(ctx context.Context, topic string, operation string) {
	if r == nil {
		return
	}
	r.applied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("operation", operation),
	))
}

func (r *Replication) ApplyFailed(ctx context.Context, topic string, operation string) {
	if r == nil {
		return
	}
	r.applyFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("operation", operation),
	))
}

// Loopback counts cache housekeeping.
type Loopback struct {
	evicted metric.Int64Counter
}

func NewLoopback(provider metric.MeterProvider) (*Loopback, error) {
	evicted, err := resolveMeter(provider).Int64Counter(
		"loopback.entries.evicted",
		metric.WithDescription("Number of fingerprints evicted because their echo never arrived"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create loopback.entries.evicted counter: %w", err)
	}
	return &Loopback{evicted: evicted}, nil
}

func (l *Loopback) Evicted(ctx context.Context, count int) {
	if l == nil || count <= 0 {
		return
	}
	l.evicted.Add(ctx, int64(count))
}

// Breaker counts circuit breaker transitions and degraded responses.
type Breaker struct {
	stateChanges metric.Int64Counter
	fallbacks    metric.Int64Counter
}

func NewBreaker(provider metric.MeterProvider) (*Breaker, error) {
	meter := resolveMeter(provider)

	stateChanges, err := meter.Int64Counter(
		"breaker.state.changes",
		metric.WithDescription("Number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create breaker.state.changes counter: %w", err)
	}

	fallbacks, err := meter.Int64Counter(
		"breaker.fallbacks",
		metric.WithDescription("Number of guarded calls answered by the fallback"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create breaker.fallbacks counter: %w", err)
	}

	return &Breaker{stateChanges: stateChanges, fallbacks: fallbacks}, nil
}

func (b *Breaker) StateChanged(ctx context.Context, breaker string, from string, to string) {
	if b == nil {
		return
	}
	b.stateChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", breaker),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (b *Breaker) Fallback(ctx context.Context, breaker string, state string) {
	if b == nil {
		return
	}
	b.fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", breaker),
		attribute.String("state", state),
	))
}

func resolveMeter(provider metric.MeterProvider) metric.Meter {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	return provider.Meter(meterName)
}

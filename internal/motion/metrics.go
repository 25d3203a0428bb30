package motion

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "capsulekin/motion"

// metrics counts solver work. Counters are shared by every agent using the same meter.
type metrics struct {
	sweeps         metric.Int64Counter
	depenetrations metric.Int64Counter
	steps          metric.Int64Counter
	dropped        metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	var (
		m   metrics
		err error
	)
	if m.sweeps, err = meter.Int64Counter("capsulekin.sweeps",
		metric.WithDescription("Capsule sweeps issued by the slide solver")); err != nil {
		return nil, fmt.Errorf("create sweeps counter: %w", err)
	}
	if m.depenetrations, err = meter.Int64Counter("capsulekin.depenetrations",
		metric.WithDescription("Overlaps resolved by minimum translation")); err != nil {
		return nil, fmt.Errorf("create depenetrations counter: %w", err)
	}
	if m.steps, err = meter.Int64Counter("capsulekin.steps",
		metric.WithDescription("Successful step-ups")); err != nil {
		return nil, fmt.Errorf("create steps counter: %w", err)
	}
	if m.dropped, err = meter.Int64Counter("capsulekin.collisions.dropped",
		metric.WithDescription("Collision results dropped because the buffer was full")); err != nil {
		return nil, fmt.Errorf("create dropped counter: %w", err)
	}
	return &m, nil
}

// noopMetrics never fails; used when the configured meter cannot create counters.
func noopMetrics() *metrics {
	m, _ := newMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func (m *metrics) sweep(ctx context.Context)         { m.sweeps.Add(ctx, 1) }
func (m *metrics) depenetration(ctx context.Context) { m.depenetrations.Add(ctx, 1) }
func (m *metrics) step(ctx context.Context)          { m.steps.Add(ctx, 1) }
func (m *metrics) drop(ctx context.Context)          { m.dropped.Add(ctx, 1) }

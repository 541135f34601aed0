// SPDX-License-Identifier: EPL-2.0

// Package observe holds the OpenTelemetry instruments recorded by the stage
// chain.
//
// Metrics are recorded through the OpenTelemetry Metrics API only; the host
// decides which MeterProvider backs them. Tests build their own [Metrics]
// with [NewMetrics] over an SDK ManualReader.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/wingyippp/pcmchain"

// Metrics holds the instruments of one chain (or several sharing a
// provider). All fields are safe for concurrent use.
type Metrics struct {
	// BytesIn counts bytes queued into a stage. Use with attribute:
	//   attribute.String("stage", ...)
	BytesIn metric.Int64Counter

	// BytesOut counts bytes a stage produced.
	BytesOut metric.Int64Counter

	// Configures counts chain configure calls.
	Configures metric.Int64Counter

	// ConfigureRejected counts configure calls that a stage refused.
	ConfigureRejected metric.Int64Counter

	// ActiveStages is the number of stages left active by the last flush.
	ActiveStages metric.Int64Gauge

	// ProcessDuration is the time one QueueInput call spent across every
	// active stage.
	ProcessDuration metric.Float64Histogram
}

// bufferBuckets are in seconds; a 10ms buffer should take far less than
// 10ms to transform.
var bufferBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.BytesIn, err = m.Int64Counter("pcmchain.bytes.in",
		metric.WithDescription("Bytes queued into a stage."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.BytesOut, err = m.Int64Counter("pcmchain.bytes.out",
		metric.WithDescription("Bytes produced by a stage."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.Configures, err = m.Int64Counter("pcmchain.configure",
		metric.WithDescription("Chain configure calls."),
	); err != nil {
		return nil, err
	}
	if met.ConfigureRejected, err = m.Int64Counter("pcmchain.configure.rejected",
		metric.WithDescription("Configure calls rejected by a stage."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStages, err = m.Int64Gauge("pcmchain.stages.active",
		metric.WithDescription("Stages active after the last flush."),
	); err != nil {
		return nil, err
	}
	if met.ProcessDuration, err = m.Float64Histogram("pcmchain.process.duration",
		metric.WithDescription("Time spent transforming one input buffer."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(bufferBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once

	noopMetrics     *Metrics
	noopMetricsOnce sync.Once
)

// DefaultMetrics returns instruments on the global MeterProvider, created
// on first call.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Noop returns instruments that record nothing. Chains built without
// metrics use it.
func Noop() *Metrics {
	noopMetricsOnce.Do(func() {
		var err error
		noopMetrics, err = NewMetrics(noop.NewMeterProvider())
		if err != nil {
			panic("observe: failed to create noop metrics: " + err.Error())
		}
	})
	return noopMetrics
}

// RecordStage records one QueueInput of a stage.
func (m *Metrics) RecordStage(ctx context.Context, stage string, in, out int) {
	attrs := metric.WithAttributes(attribute.String("stage", stage))
	m.BytesIn.Add(ctx, int64(in), attrs)
	m.BytesOut.Add(ctx, int64(out), attrs)
}

// RecordConfigure records a chain configure and, on rejection, the stage
// that refused.
func (m *Metrics) RecordConfigure(ctx context.Context, rejectedBy string) {
	if rejectedBy == "" {
		m.Configures.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
		return
	}
	m.Configures.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "rejected")))
	m.ConfigureRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", rejectedBy)))
}

// RecordProcess records the wall time of one chain QueueInput.
func (m *Metrics) RecordProcess(ctx context.Context, d time.Duration) {
	m.ProcessDuration.Record(ctx, d.Seconds())
}

package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// total is one data point of a run's metrics.
type total struct {
	name  string
	attrs string
	value int64
}

// totals flattens the integer sums and gauges of rm. Histograms contribute
// their sample count under name+".count".
func totals(rm metricdata.ResourceMetrics) []total {
	var out []total
	enc := attribute.DefaultEncoder()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch d := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range d.DataPoints {
					out = append(out, total{name: m.Name, attrs: dp.Attributes.Encoded(enc), value: dp.Value})
				}
			case metricdata.Gauge[int64]:
				for _, dp := range d.DataPoints {
					out = append(out, total{name: m.Name, attrs: dp.Attributes.Encoded(enc), value: dp.Value})
				}
			case metricdata.Histogram[float64]:
				for _, dp := range d.DataPoints {
					out = append(out, total{name: m.Name + ".count", attrs: dp.Attributes.Encoded(enc), value: int64(dp.Count)})
				}
			}
		}
	}

	slices.SortFunc(out, func(a, b total) int {
		return cmp.Or(cmp.Compare(a.name, b.name), cmp.Compare(a.attrs, b.attrs))
	})
	return out
}

// logTotals collects reader once and logs every total.
func logTotals(ctx context.Context, reader sdkmetric.Reader, logger *slog.Logger) error {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect metrics: %w", err)
	}
	for _, t := range totals(rm) {
		logger.Info("metric", "name", t.name, "attrs", t.attrs, "value", t.value)
	}
	return nil
}

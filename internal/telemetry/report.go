package telemetry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// LogMetrics gathers from g and logs one record per series whose name starts
// with namespace. An empty namespace logs everything. Counters and gauges
// log their value; histograms log count and sum.
func LogMetrics(g prometheus.Gatherer, namespace string, logger *slog.Logger) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		name := mf.GetName()
		if namespace != "" && !strings.HasPrefix(name, namespace+"_") {
			continue
		}

		for _, m := range mf.GetMetric() {
			attrs := []any{"name", name}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}

			switch {
			case m.GetCounter() != nil:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				attrs = append(attrs, "value", m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				attrs = append(attrs, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			default:
				continue
			}

			logger.Info("Metric", attrs...)
		}
	}
	return nil
}

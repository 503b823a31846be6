package observability

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// LogGathered writes every series in g as one structured log line (msg "metric")
// for runtimes without a scrape endpoint. Summaries and untyped series are skipped.
func LogGathered(ctx context.Context, g prometheus.Gatherer, log *slog.Logger) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{"name", mf.GetName(), "labels", labelMap(m.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				attrs = append(attrs, "value", m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				attrs = append(attrs, "value", m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				attrs = append(attrs, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			default:
				continue
			}
			log.InfoContext(ctx, "metric", attrs...)
		}
	}
	return nil
}

func labelMap(pairs []*dto.LabelPair) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, lp := range pairs {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

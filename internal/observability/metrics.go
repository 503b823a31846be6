package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"faceindex/internal/service"
)

// Metrics holds the pipeline counters shared by every invoking boundary.
type Metrics struct {
	PipelineRuns     *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
}

// NewMetrics creates pipeline metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		PipelineRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Pipeline runs by outcome. Failed runs are labelled with the stage that failed.",
			},
			[]string{"pipeline", "outcome"},
		),
		PipelineDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_duration_seconds",
				Help:    "Wall time of a pipeline run.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pipeline"},
		),
	}

	for _, c := range []prometheus.Collector{m.PipelineRuns, m.PipelineDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished run. A nil receiver is a no-op.
func (m *Metrics) Observe(pipeline string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.PipelineDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
	m.PipelineRuns.WithLabelValues(pipeline, Outcome(err)).Inc()
}

// Outcome maps a pipeline error to a metric label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var se *service.StageError
	if errors.As(err, &se) {
		return "failed_" + string(se.Stage)
	}
	return "failed"
}

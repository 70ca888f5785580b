package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the controller's instrumentation. A zero-value Controller
// uses an unregistered set, so hosts that do not scrape pay nothing.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	KernelIdleWait  prometheus.Histogram
	DetectionsTotal *prometheus.CounterVec
}

// NewMetrics creates the metric set. Pass a nil registerer to keep the
// metrics private (e.g. in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nbstage_runs_total",
				Help: "Stage run attempts by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nbstage_run_duration_seconds",
				Help:    "Wall time of complete stage runs",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
		KernelIdleWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nbstage_kernel_idle_wait_seconds",
				Help:    "Time spent waiting for a restarted kernel to report idle",
				Buckets: prometheus.DefBuckets,
			},
		),
		DetectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nbstage_detections_total",
				Help: "Stage I/O detection attempts by language and outcome",
			},
			[]string{"language", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.RunsTotal, m.RunDuration, m.KernelIdleWait, m.DetectionsTotal)
	}
	return m
}

const (
	outcomeSuccess = "success"
	outcomeAborted = "aborted"
	outcomeFailed  = "failed"
	outcomeEmpty   = "empty"
)

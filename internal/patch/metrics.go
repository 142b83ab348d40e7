package patch

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/patchbind/internal/binder"
)

// Metrics records compile pass outcomes. A nil *Metrics records nothing.
type Metrics struct {
	// compiles counts compile passes.
	// Labels: result (ok, error)
	compiles *prometheus.CounterVec

	// failures counts individual errors by code.
	// Labels: code (UNKNOWN_NODE_TYPE, UNRESOLVED_REFERENCE, ...)
	failures *prometheus.CounterVec

	// nodes counts successfully bound nodes.
	nodes prometheus.Counter

	// cycles counts feedback loop warnings.
	cycles prometheus.Counter

	// duration measures compile pass latency.
	duration prometheus.Histogram
}

// NewMetrics registers the compile metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		compiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patchbind",
			Subsystem: "compile",
			Name:      "passes_total",
			Help:      "Total compile passes by result",
		}, []string{"result"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patchbind",
			Subsystem: "compile",
			Name:      "errors_total",
			Help:      "Total compile errors by code",
		}, []string{"code"}),
		nodes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "patchbind",
			Subsystem: "compile",
			Name:      "nodes_bound_total",
			Help:      "Total nodes bound by successful compile passes",
		}),
		cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: "patchbind",
			Subsystem: "compile",
			Name:      "cycle_warnings_total",
			Help:      "Total feedback loop warnings",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "patchbind",
			Subsystem: "compile",
			Name:      "duration_seconds",
			Help:      "Compile pass latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

func (m *Metrics) observe(start time.Time, res *Result, errs []error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if len(errs) > 0 {
		m.compiles.WithLabelValues("error").Inc()
		for _, err := range errs {
			m.failures.WithLabelValues(ErrorCodeOf(err)).Inc()
		}
		return
	}
	m.compiles.WithLabelValues("ok").Inc()
	m.nodes.Add(float64(res.NodeCount()))
	m.cycles.Add(float64(len(res.Warnings)))
}

// ErrorCodeOf returns the code of a binding or wiring error, or "UNKNOWN".
func ErrorCodeOf(err error) string {
	var be *binder.BindError
	if errors.As(err, &be) {
		return string(be.Code)
	}
	var we *WiringError
	if errors.As(err, &we) {
		return string(we.Code)
	}
	return "UNKNOWN"
}

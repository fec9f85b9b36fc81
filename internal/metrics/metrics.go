// Package metrics exposes optional Prometheus instrumentation for the
// compiler. It is ambient observability, not part of the compiler's pure
// input/output contract: a caller that never touches this package gets a
// compiler with zero side effects, exactly as spec section 6 ("Persisted
// state: None") requires.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is handed into pkg/chtl.CompileWithMetrics as an optional
// parameter. A nil *Recorder is a valid no-op recorder; a Recorder not built
// by NewRecorder has no collectors and must not be used.
type Recorder struct {
	compiles        prometheus.Counter
	compileFailures prometheus.Counter
	compileSeconds  prometheus.Histogram
	diagnostics     *prometheus.CounterVec
}

// NewRecorder registers the compiler's metrics against reg and returns a
// Recorder. Passing nil disables registration; the returned Recorder is
// still safe to call (observations are simply discarded).
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		compiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chtl",
			Name:      "compiles_total",
			Help:      "Total number of compilation units compiled.",
		}),
		compileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chtl",
			Name:      "compile_failures_total",
			Help:      "Total number of compilation units that finished with ok=false.",
		}),
		compileSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chtl",
			Name:      "compile_duration_seconds",
			Help:      "Wall-clock duration of a single compilation unit.",
			Buckets:   prometheus.DefBuckets,
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chtl",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted, partitioned by severity.",
		}, []string{"severity"}),
	}
	if reg != nil {
		reg.MustRegister(r.compiles, r.compileFailures, r.compileSeconds, r.diagnostics)
	}
	return r
}

// Observe records the outcome of one compile. A nil Recorder is valid.
func (r *Recorder) Observe(ok bool, duration time.Duration, errorCount, warningCount, infoCount int) {
	if r == nil {
		return
	}
	r.compiles.Inc()
	if !ok {
		r.compileFailures.Inc()
	}
	r.compileSeconds.Observe(duration.Seconds())
	r.diagnostics.WithLabelValues("error").Add(float64(errorCount))
	r.diagnostics.WithLabelValues("warning").Add(float64(warningCount))
	r.diagnostics.WithLabelValues("info").Add(float64(infoCount))
}

// Package metrics publishes Prometheus counters and histograms for the HBAC
// decision pipeline, wired the way the teacher's internal/metrics package
// wires its Recorder (injectable registerer, CounterVec/HistogramVec pairs).
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DirectoryOperation identifies the directory call being instrumented.
type DirectoryOperation string

const (
	// OperationBind records the initial connect+bind.
	OperationBind DirectoryOperation = "bind"
	// OperationSearch records a subtree search (object fetch or rule fetch).
	OperationSearch DirectoryOperation = "search"
)

// Result labels capture the outcome of a directory call.
const (
	ResultOK          = "ok"
	ResultUnavailable = "unavailable"
	ResultIO          = "io"
	ResultInternal    = "internal"
)

// Recorder publishes Prometheus metrics for decision activations.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	decisions        *prometheus.CounterVec
	decisionLatency  prometheus.Histogram
	directoryOps     *prometheus.CounterVec
	directoryLatency *prometheus.HistogramVec
	rulesFetched     prometheus.Histogram
	rulesMaterialized prometheus.Histogram
	rulesRejected    *prometheus.CounterVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a
// dedicated registry is created so multiple recorders (and tests) can
// coexist without conflicting with the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hbacd",
		Subsystem: "decision",
		Name:      "total",
		Help:      "Total check-access activations by shim status.",
	}, []string{"status"})

	decisionLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hbacd",
		Subsystem: "decision",
		Name:      "duration_seconds",
		Help:      "Latency distribution for a full check-access activation.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	directoryOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hbacd",
		Subsystem: "directory",
		Name:      "operations_total",
		Help:      "Directory operations executed by the directory client.",
	}, []string{"operation", "result"})

	directoryLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hbacd",
		Subsystem: "directory",
		Name:      "operation_duration_seconds",
		Help:      "Latency distribution for directory operations.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})

	rulesFetched := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hbacd",
		Subsystem: "rules",
		Name:      "fetched",
		Help:      "Number of raw rule entries returned by a single rule fetch.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	rulesMaterialized := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hbacd",
		Subsystem: "rules",
		Name:      "materialized",
		Help:      "Number of rules surviving materialization for a single fetch.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	rulesRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hbacd",
		Subsystem: "rules",
		Name:      "rejected_total",
		Help:      "Raw rule entries, or single rule members, dropped during materialization, by reason.",
	}, []string{"reason"})

	reg.MustRegister(decisions, decisionLatency, directoryOps, directoryLatency, rulesFetched, rulesMaterialized, rulesRejected)

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	return &Recorder{
		gatherer:          reg,
		handler:           handler,
		decisions:         decisions,
		decisionLatency:   decisionLatency,
		directoryOps:      directoryOps,
		directoryLatency:  directoryLatency,
		rulesFetched:      rulesFetched,
		rulesMaterialized: rulesMaterialized,
		rulesRejected:     rulesRejected,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry,
// mirroring the teacher's Recorder.Handler() for any operator who scrapes
// hbacd out-of-band (the decision path itself never serves HTTP).
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer for tests and advanced
// integrations.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveDecision records the shim status and total latency of one
// check-access activation.
func (r *Recorder) ObserveDecision(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.decisions.WithLabelValues(normalizeLabel(status)).Inc()
	r.decisionLatency.Observe(duration.Seconds())
}

// ObserveDirectory records the outcome and latency of one directory
// operation (bind or search).
func (r *Recorder) ObserveDirectory(op DirectoryOperation, result string, duration time.Duration) {
	if r == nil {
		return
	}
	opLabel := string(op)
	if opLabel == "" {
		opLabel = string(OperationSearch)
	}
	r.directoryOps.WithLabelValues(opLabel, normalizeLabel(result)).Inc()
	r.directoryLatency.WithLabelValues(opLabel).Observe(duration.Seconds())
}

// ObserveRuleFetch records how many raw entries a rule fetch returned and
// how many rules survived materialization.
func (r *Recorder) ObserveRuleFetch(fetched, materialized int) {
	if r == nil {
		return
	}
	r.rulesFetched.Observe(float64(fetched))
	r.rulesMaterialized.Observe(float64(materialized))
}

// ObserveRuleRejected records a single rule dropped during materialization,
// tagged by the reason (e.g. "malformed-enabled", "malformed-category"), or a
// single member DN dropped from a rule that is kept ("malformed-member").
func (r *Recorder) ObserveRuleRejected(reason string) {
	if r == nil {
		return
	}
	r.rulesRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}

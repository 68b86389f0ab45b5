// Package metrics exposes Prometheus instrumentation for the translation
// core's operations (spec §2's "metrics/trace instrumentation library" is
// explicitly out of scope as an external collaborator — the choice of
// prometheus/client_golang itself, and what to instrument, is this
// repository's own ambient-stack decision).
//
// Grounded on
// zetxqx-llm-d-kv-cache-manager/pkg/kvcache/metrics/collector.go's
// package-level collector variables plus a Collectors()/Register() pair,
// adapted to register against a dedicated prometheus.Registry via
// client_golang directly rather than controller-runtime's global registry
// (this service is not a Kubernetes controller, so pulling in
// sigs.k8s.io/controller-runtime for its registry alone isn't justified).
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nllb", Subsystem: "translator", Name: "requests_total",
		Help: "Total number of translation-core requests by operation and outcome",
	}, []string{"operation", "outcome"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nllb", Subsystem: "translator", Name: "request_duration_seconds",
		Help:    "Latency of translation-core requests by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	TokensGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nllb", Subsystem: "translator", Name: "tokens_generated_total",
		Help: "Total number of decoded tokens, by operation",
	}, []string{"operation"})

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nllb", Subsystem: "dispatch", Name: "queue_depth",
		Help: "Number of requests currently admitted to the Dispatch Layer but not yet complete",
	})

	LifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nllb", Subsystem: "lifecycle", Name: "transitions_total",
		Help: "Total number of model lifecycle transitions, by kind and whether state actually changed",
	}, []string{"transition", "changed"})
)

// Collectors returns every collector this package defines.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		RequestsTotal, RequestDuration, TokensGenerated, QueueDepth, LifecycleTransitions,
	}
}

var registerOnce sync.Once

// Register registers every collector against reg exactly once per process.
func Register(reg *prometheus.Registry) {
	registerOnce.Do(func() {
		reg.MustRegister(Collectors()...)
	})
}

// Handler returns the /metrics HTTP handler for reg (spec §6's
// `GET /metrics` route).
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Recorder is a small façade over the package-level collectors so callers
// (internal/httpapi) don't need to know Prometheus's vector
// API to instrument a request.
type Recorder struct{}

// NewRecorder returns a Recorder. It holds no state: the package-level
// collector variables are themselves the shared state, registered once via
// Register.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObserveRequest records one completed request for operation, its outcome
// ("ok" or an apierr.Kind string), and how long it took.
func (r *Recorder) ObserveRequest(operation, outcome string, duration time.Duration) {
	RequestsTotal.WithLabelValues(operation, outcome).Inc()
	RequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveTokensGenerated adds n to the running token count for operation.
func (r *Recorder) ObserveTokensGenerated(operation string, n int) {
	if n <= 0 {
		return
	}
	TokensGenerated.WithLabelValues(operation).Add(float64(n))
}

// SetQueueDepth reports the Dispatch Layer's current admitted-request count.
func (r *Recorder) SetQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}

// ObserveLifecycleTransition records a load/unload attempt and whether it
// actually changed state (spec §4.4's 204-vs-304 distinction).
func (r *Recorder) ObserveLifecycleTransition(transition string, changed bool) {
	LifecycleTransitions.WithLabelValues(transition, changedLabel(changed)).Inc()
}

func changedLabel(changed bool) string {
	if changed {
		return "true"
	}
	return "false"
}

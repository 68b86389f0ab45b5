// Package httpapi implements the External interface bindings (spec §4.7)
// and Request Contracts (spec §2): it wires every HTTP route in §6's table
// to the corresponding engine operation, validates input against §3's
// constraints, and frames streaming output as SSE.
//
// Grounded on examples/chi-server/main.go's router assembly
// (chi.NewRouter + middleware.Logger/Recoverer/Timeout + cors.Handler),
// generalized from that example's single POST /generate route to the full
// ten-route table.
package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/pbusenius/nllb-api/pkg/dispatch"
	"github.com/pbusenius/nllb-api/pkg/langdetect"
	"github.com/pbusenius/nllb-api/pkg/lifecycle"
	"github.com/pbusenius/nllb-api/pkg/metrics"
	"github.com/pbusenius/nllb-api/pkg/secretguard"
	"github.com/pbusenius/nllb-api/pkg/telemetry"
	"github.com/pbusenius/nllb-api/pkg/translator"
)

// State is the explicit application-state value every handler closes over
// (spec §9, "Dynamic app-state container": replacing the source's mutable
// app.state attribute with an explicit value held by the router).
type State struct {
	Translator *translator.Engine
	Detector   langdetect.Detector
	Lifecycle  *lifecycle.Controller
	Dispatch   *dispatch.Dispatch
	Guard      *secretguard.Guard
	Metrics    *metrics.Recorder

	// Tracer and Telemetry drive the OpenTelemetry span recorded around
	// every translation operation (spec's ambient stack). Telemetry is
	// disabled in telemetry.DefaultSettings(), in which case Tracer should be
	// the no-op tracer telemetry.GetTracer returns; cmd/server enables it from
	// config.OTelEnabled, which defaults to true.
	Tracer    trace.Tracer
	Telemetry *telemetry.Settings

	// GetUnaryMaxTextLength bounds text length on GET /translator and
	// GET /translator/stream (spec §3: 2000 to survive URL size limits).
	GetUnaryMaxTextLength int
	// PostMaxTextLength bounds text length on POST /translator and every
	// batch item (spec §3: 4096).
	PostMaxTextLength int
	// LanguageMaxTextLength bounds text length on GET /language, per the
	// original source's own Query(max_length=512) (supplemented from
	// original_source/server/api/language.py — the spec itself is silent
	// on a language-detection-specific cap).
	LanguageMaxTextLength int
	// MaxBatchSize bounds POST /translator/batch's item count (spec §3:
	// "N bounded by configuration, nominally 128-1000").
	MaxBatchSize int
	// RequestDeadlineSeconds is the optional per-request deadline passed to
	// the Dispatch Layer (spec §4.5: 300s default).
	RequestDeadlineSeconds int

	DefaultSource string
	DefaultTarget string

	// Label is the service name reported by GET /health.
	Label string

	// MetricsEnabled gates GET /metrics (spec §6: "200 text, or 503 if
	// metrics disabled").
	MetricsEnabled bool
	Registry       *prometheus.Registry
}

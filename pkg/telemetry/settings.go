// Package telemetry provides OpenTelemetry integration for the translation
// service. It traces translate, batch, and stream operations with
// customizable spans and attributes; lifecycle operations are not traced.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Settings configures telemetry for translator operations.
// Telemetry is disabled by default and must be explicitly enabled.
type Settings struct {
	// IsEnabled controls whether telemetry is active. Defaults to false.
	IsEnabled bool

	// RecordText controls whether source/translated text is recorded in spans.
	// Disabled by default, since translation text is user content.
	RecordText bool

	// Metadata contains additional key-value pairs to include in telemetry spans.
	Metadata map[string]attribute.Value

	// Tracer is a custom OpenTelemetry tracer. If nil, the global tracer is used.
	Tracer trace.Tracer
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		IsEnabled:  false,
		RecordText: false,
		Metadata:   make(map[string]attribute.Value),
	}
}

// WithEnabled returns a copy of Settings with IsEnabled set to the given value.
func (s *Settings) WithEnabled(enabled bool) *Settings {
	c := *s
	c.IsEnabled = enabled
	return &c
}

// WithRecordText returns a copy of Settings with RecordText set to the given value.
func (s *Settings) WithRecordText(record bool) *Settings {
	c := *s
	c.RecordText = record
	return &c
}

// WithMetadata returns a copy of Settings with the given metadata merged in.
func (s *Settings) WithMetadata(metadata map[string]attribute.Value) *Settings {
	c := *s
	c.Metadata = make(map[string]attribute.Value, len(s.Metadata)+len(metadata))
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	for k, v := range metadata {
		c.Metadata[k] = v
	}
	return &c
}

// WithTracer returns a copy of Settings with Tracer set to the given value.
func (s *Settings) WithTracer(tracer trace.Tracer) *Settings {
	c := *s
	c.Tracer = tracer
	return &c
}

package httpapi

import (
	"bytes"
	"fmt"
	"io"
)

// sseEvent is one server-sent event frame (spec §4.7/Glossary: "event:<name>
// \ndata:<payload>\n\n", the event line omitted when no event name is set).
//
// Adapted from pkg/providerutils/streaming.SSEWriter — that type's
// parser/writer pair was built for arbitrary named events consumed by an
// HTTP client library; this repository only ever produces one event kind
// (a translation chunk, optionally tagged with the caller's event_type
// query parameter), so the parser half and the id/retry fields (unused by
// spec §4.7) are dropped and WriteEvent specialized to this service's one
// framing.
type sseEvent struct {
	Event string
	Data  string
}

type sseWriter struct {
	w io.Writer
}

func newSSEWriter(w io.Writer) *sseWriter {
	return &sseWriter{w: w}
}

// writeEvent renders one SSE frame, omitting the event: line when Event is
// empty (spec §6: `event_type?`, an optional query parameter).
func (s *sseWriter) writeEvent(event sseEvent) error {
	var buf bytes.Buffer
	if event.Event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event.Event)
	}
	fmt.Fprintf(&buf, "data: %s\n\n", event.Data)

	_, err := s.w.Write(buf.Bytes())
	return err
}

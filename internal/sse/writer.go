package sse

import (
	"fmt"
	"net/http"
)

// Writer emits SSE events over an http.ResponseWriter, flushing after
// every write so clients see events as they happen.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter prepares w for event streaming and returns a Writer. It fails
// when the ResponseWriter does not support flushing (streaming would
// otherwise buffer indefinitely).
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // disable proxy buffering

	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one named event with the given data payload.
func (sw *Writer) Send(name string, data []byte) error {
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

// Heartbeat writes a comment line to keep the connection alive.
func (sw *Writer) Heartbeat() error {
	if _, err := fmt.Fprint(sw.w, ": heartbeat\n\n"); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}

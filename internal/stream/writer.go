package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Writer emits server-sent events toward the frontend. The event shapes are
// the ones the web client consumes: {"content": ...} per text delta, then
// {"done": true}, or {"error": ...} if the relay fails mid-stream.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter wraps a ResponseWriter for SSE output. Returns false when the
// writer cannot flush, in which case streaming is not possible.
func NewWriter(w http.ResponseWriter) (*Writer, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	return &Writer{w: w, flusher: flusher}, true
}

// WriteHeaders sends the SSE response headers.
func (sw *Writer) WriteHeaders() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	sw.w.WriteHeader(http.StatusOK)
	sw.flusher.Flush()
}

// Content sends a text delta event.
func (sw *Writer) Content(text string) {
	sw.event(map[string]any{"content": text})
}

// Done signals the end of the stream.
func (sw *Writer) Done() {
	sw.event(map[string]any{"done": true})
}

// Error reports a mid-stream failure to the client.
func (sw *Writer) Error(message string) {
	sw.event(map[string]any{"error": message})
}

func (sw *Writer) event(payload map[string]any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(sw.w, "data: %s\n\n", data)
	sw.flusher.Flush()
}

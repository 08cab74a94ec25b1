package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriterEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	sw, ok := NewWriter(rec)
	if !ok {
		t.Fatal("ResponseRecorder should support flushing")
	}

	sw.WriteHeaders()
	sw.Content("Hel")
	sw.Content(`lo "there"`)
	sw.Done()

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}

	got := rec.Body.String()
	want := "data: {\"content\":\"Hel\"}\n\n" +
		"data: {\"content\":\"lo \\\"there\\\"\"}\n\n" +
		"data: {\"done\":true}\n\n"
	if got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriterError(t *testing.T) {
	rec := httptest.NewRecorder()
	sw, _ := NewWriter(rec)
	sw.WriteHeaders()
	sw.Error("upstream went away")

	if !strings.Contains(rec.Body.String(), `{"error":"upstream went away"}`) {
		t.Errorf("missing error event in %q", rec.Body.String())
	}
}

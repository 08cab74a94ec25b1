package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ragstack/go-ragproxy/internal/conversation"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{APIKey: "pplx-test", BaseURL: srv.URL}
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer pplx-test" {
			t.Errorf("Authorization = %q", auth)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["query"] != "golang" {
			t.Errorf("query = %v, want golang", payload["query"])
		}
		if payload["max_results"] != float64(5) {
			t.Errorf("max_results = %v, want 5", payload["max_results"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Go", "url": "https://go.dev", "snippet": "The Go programming language"},
			},
		})
	})

	results, err := c.Search(context.Background(), "golang", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].URL != "https://go.dev" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestChatCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["model"] != "sonar" {
			t.Errorf("model = %v, want sonar", payload["model"])
		}
		if _, ok := payload["stream"]; ok {
			t.Error("stream must be omitted for non-streaming requests")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "Go is a language."}},
			},
			"citations": []string{"https://go.dev"},
		})
	})

	result, err := c.ChatCompletion(context.Background(), &ChatRequest{
		Model:    "sonar",
		Messages: []conversation.Message{{Role: conversation.RoleUser, Content: "What is Go?"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "Go is a language." {
		t.Errorf("content = %q", result.Content)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "https://go.dev" {
		t.Errorf("sources = %v", result.Sources)
	}
}

func TestChatCompletionSearchResultsFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "ok"}},
			},
			"search_results": []map[string]string{
				{"title": "Go", "url": "https://go.dev"},
				{"title": "Docs", "url": "https://go.dev/doc"},
			},
		})
	})

	result, err := c.ChatCompletion(context.Background(), &ChatRequest{Model: "sonar"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Sources) != 2 || result.Sources[1] != "https://go.dev/doc" {
		t.Errorf("sources = %v", result.Sources)
	}
}

func TestChatCompletionStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if accept := r.Header.Get("Accept"); accept != "text/event-stream" {
			t.Errorf("Accept = %q", accept)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["stream"] != true {
			t.Errorf("stream = %v, want true", payload["stream"])
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\ndata: [DONE]\n\n")
	})

	body, err := c.ChatCompletionStream(context.Background(), &ChatRequest{Model: "sonar", Stream: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	raw, _ := io.ReadAll(body)
	if !strings.Contains(string(raw), "[DONE]") {
		t.Errorf("stream body = %q", raw)
	}
}

func TestUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-request-id", "req-42")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid API key", "type": "authentication_error"},
		})
	})

	_, err := c.Search(context.Background(), "q", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	upErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if upErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", upErr.StatusCode)
	}
	msg := upErr.Error()
	if !strings.Contains(msg, "Invalid API key") || !strings.Contains(msg, "req-42") {
		t.Errorf("message = %q", msg)
	}
}

func TestFormatUpstreamError(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"nested message", 400, `{"error":{"message":"bad request"}}`, "bad request"},
		{"detail field", 422, `{"detail":"query required"}`, "query required"},
		{"plain string error", 500, `{"error":"boom"}`, "boom"},
		{"unparsed body", 502, "<html>bad gateway</html>", "unparsed body"},
		{"empty body", 503, "", "empty error body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUpstreamError(tt.code, []byte(tt.body))
			if !strings.Contains(got, tt.want) {
				t.Errorf("FormatUpstreamError() = %q, want substring %q", got, tt.want)
			}
		})
	}
}

// Package upstream talks to the Perplexity API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"

	"github.com/ragstack/go-ragproxy/internal/config"
	"github.com/ragstack/go-ragproxy/internal/conversation"
	"github.com/ragstack/go-ragproxy/internal/types"
)

// upstreamHTTPTimeout is the maximum time allowed for an upstream request.
// SSE streams can be long-lived, so we use a generous timeout.
const upstreamHTTPTimeout = 5 * time.Minute

// httpClient is the shared HTTP client for upstream requests with a timeout.
var httpClient = &http.Client{Timeout: upstreamHTTPTimeout}

// ChatRequest holds the parameters for an upstream chat completion.
type ChatRequest struct {
	Model            string
	Messages         []conversation.Message
	Stream           bool
	WebSearchOptions *types.WebSearchOptions
}

// ChatResult is a fully-assembled non-streaming chat reply.
type ChatResult struct {
	Content string
	Sources []string
}

// Client makes requests to the Perplexity API.
type Client struct {
	APIKey  string
	BaseURL string
	Verbose bool
}

// NewClient creates a new upstream client.
func NewClient(apiKey string, verbose bool) *Client {
	return &Client{APIKey: apiKey, BaseURL: config.BaseURL(), Verbose: verbose}
}

type chatPayload struct {
	Model            string                  `json:"model"`
	Messages         []conversation.Message  `json:"messages"`
	Stream           bool                    `json:"stream,omitempty"`
	WebSearchOptions *types.WebSearchOptions `json:"web_search_options,omitempty"`
}

type searchPayload struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type searchResponse struct {
	Results []types.SearchResult `json:"results"`
}

// chatExtras carries the Perplexity fields outside the OpenAI-compatible
// completion shape. Older responses list sources in citations, newer ones
// in search_results.
type chatExtras struct {
	Citations     []string `json:"citations"`
	SearchResults []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"search_results"`
}

// Search performs a web search.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	if c.Verbose {
		slog.Info("upstream.search", "query_chars", len(query), "max_results", maxResults)
	}

	resp, err := c.post(ctx, "/search", searchPayload{Query: query, MaxResults: maxResults}, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, readError(resp)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return decoded.Results, nil
}

// ChatCompletion performs a non-streaming chat completion and collects the
// reply content plus its sources.
func (c *Client) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	c.logChatRequest(req)

	resp, err := c.post(ctx, "/chat/completions", chatPayload{
		Model:            req.Model,
		Messages:         req.Messages,
		WebSearchOptions: req.WebSearchOptions,
	}, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, readError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	var extras chatExtras
	_ = json.Unmarshal(body, &extras)

	content := ""
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}

	sources := extras.Citations
	if len(sources) == 0 {
		for _, sr := range extras.SearchResults {
			if sr.URL != "" {
				sources = append(sources, sr.URL)
			}
		}
	}

	return &ChatResult{Content: content, Sources: sources}, nil
}

// ChatCompletionStream starts a streaming chat completion and returns the
// SSE body for relay. The caller must close it.
func (c *Client) ChatCompletionStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error) {
	c.logChatRequest(req)

	resp, err := c.post(ctx, "/chat/completions", chatPayload{
		Model:            req.Model,
		Messages:         req.Messages,
		Stream:           true,
		WebSearchOptions: req.WebSearchOptions,
	}, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return resp.Body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, stream bool) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream Perplexity request failed: %w", err)
	}

	if c.Verbose {
		attrs := []any{"path", path, "status", resp.StatusCode}
		if requestID := upstreamRequestID(resp.Header); requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}
		slog.Info("upstream.response", attrs...)
	}
	return resp, nil
}

func (c *Client) logChatRequest(req *ChatRequest) {
	if !c.Verbose {
		return
	}
	slog.Info("upstream.request",
		"model", req.Model,
		"messages", len(req.Messages),
		"stream", req.Stream,
		"web_search_options", req.WebSearchOptions != nil,
	)
}

func readError(resp *http.Response) *Error {
	errBody, _ := io.ReadAll(resp.Body)
	return &Error{
		StatusCode: resp.StatusCode,
		Body:       errBody,
		Headers:    resp.Header,
	}
}

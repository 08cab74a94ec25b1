// Package types defines the wire schemas exchanged with the web frontend.
package types

import "github.com/ragstack/go-ragproxy/internal/conversation"

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchResponse echoes the query alongside its results.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// UserLocation narrows web search results to a geography.
type UserLocation struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

// WebSearchOptions tunes the upstream web search behind a chat completion.
// Every field is optional; zero values are omitted from the upstream payload.
type WebSearchOptions struct {
	// SearchContextSize controls how much search context the model sees:
	// "low", "medium" or "high".
	SearchContextSize string `json:"search_context_size,omitempty"`
	// UserLocation localizes search results.
	UserLocation *UserLocation `json:"user_location,omitempty"`
}

// ChatRequest is the body of POST /api/chat. Messages carry the full
// conversation history; Query is the new user utterance.
type ChatRequest struct {
	Messages         []conversation.Message `json:"messages"`
	Query            string                 `json:"query"`
	Model            string                 `json:"model,omitempty"`
	Stream           bool                   `json:"stream,omitempty"`
	WebSearchOptions *WebSearchOptions      `json:"web_search_options,omitempty"`
}

// ChatResponse is the non-streaming chat reply.
type ChatResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// Model describes an available upstream model.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ModelsResponse is the body of GET /api/models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string   `json:"status"`
	AllowedOrigins []string `json:"allowed_origins"`
	Timestamp      string   `json:"timestamp"`
}

// APIInfo is the body of GET /.
type APIInfo struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ErrorDetail carries an error message.
type ErrorDetail struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

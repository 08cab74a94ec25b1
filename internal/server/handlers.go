package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ragstack/go-ragproxy/internal/conversation"
	"github.com/ragstack/go-ragproxy/internal/models"
	"github.com/ragstack/go-ragproxy/internal/stream"
	"github.com/ragstack/go-ragproxy/internal/types"
	"github.com/ragstack/go-ragproxy/internal/upstream"
)

const (
	defaultMaxResults = 10
	maxMaxResults     = 50
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIInfo{
		Message: "RAG Application API",
		Status:  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:         "healthy",
		AllowedOrigins: s.Config.AllowedOrigins,
		Timestamp:      time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models.Catalog()})
}

// handleSearch handles POST /api/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req types.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}
	if maxResults < 1 || maxResults > maxMaxResults {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("max_results must be between 1 and %d", maxMaxResults))
		return
	}

	results, err := s.Upstream.Search(r.Context(), req.Query, maxResults)
	if err != nil {
		status, msg := upstreamErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	if results == nil {
		results = []types.SearchResult{}
	}

	writeJSON(w, http.StatusOK, types.SearchResponse{Query: req.Query, Results: results})
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req types.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	for i, m := range req.Messages {
		if !m.Role.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized role %q at message %d", m.Role, i))
			return
		}
	}

	model := models.Normalize(req.Model)
	if known, hint := models.IsKnown(model); !known {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("model %q is not available via this endpoint; available models: %s", model, hint))
		return
	}

	upReq := &upstream.ChatRequest{
		Model:            model,
		Messages:         conversation.Normalize(req.Messages, req.Query),
		Stream:           req.Stream,
		WebSearchOptions: req.WebSearchOptions,
	}

	if req.Stream {
		s.streamChat(w, r, upReq)
		return
	}

	result, err := s.Upstream.ChatCompletion(r.Context(), upReq)
	if err != nil {
		status, msg := upstreamErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, types.ChatResponse{Response: result.Content, Sources: sources})
}

// streamChat relays upstream SSE chunks to the client as content events.
func (s *Server) streamChat(w http.ResponseWriter, r *http.Request, upReq *upstream.ChatRequest) {
	sw, ok := stream.NewWriter(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported by this connection")
		return
	}

	body, err := s.Upstream.ChatCompletionStream(r.Context(), upReq)
	if err != nil {
		status, msg := upstreamErrorStatus(err)
		writeError(w, status, msg)
		return
	}
	defer body.Close()

	sw.WriteHeaders()

	reader := stream.NewReader(body)
	for {
		chunk, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The client going away also surfaces here; only report
			// failures the client can still see.
			if r.Context().Err() == nil {
				slog.Error("stream relay failed", "error", err)
				sw.Error(err.Error())
			}
			return
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				sw.Content(choice.Delta.Content)
			}
		}
	}
	sw.Done()
}

// --- Helpers ---

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return nil, false
	}
	return body, true
}

func upstreamErrorStatus(err error) (int, string) {
	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, upErr.Error()
	}
	return http.StatusBadGateway, err.Error()
}

package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a failed upstream request with error details.
type Error struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (e *Error) Error() string {
	msg := FormatUpstreamError(e.StatusCode, e.Body)
	if reqID := upstreamRequestID(e.Headers); reqID != "" {
		return fmt.Sprintf("%s (request_id: %s)", msg, reqID)
	}
	return msg
}

// FormatUpstreamError formats an error from the upstream response.
func FormatUpstreamError(statusCode int, rawBody []byte) string {
	status := fmt.Sprintf("%d", statusCode)
	if text := http.StatusText(statusCode); text != "" {
		status = fmt.Sprintf("%d %s", statusCode, text)
	}
	if msg := extractErrorMessage(rawBody); msg != "" {
		return fmt.Sprintf("Upstream returned HTTP %s: %s", status, msg)
	}
	if preview := compactBodyPreview(rawBody, 280); preview != "" {
		return fmt.Sprintf("Upstream returned HTTP %s with unparsed body: %s", status, preview)
	}
	return fmt.Sprintf("Upstream returned HTTP %s with empty error body", status)
}

func extractErrorMessage(rawBody []byte) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return ""
	}
	return extractErrorMessageFromMap(payload)
}

func extractErrorMessageFromMap(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error_description", "title", "reason"} {
		if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if nested, ok := payload["error"].(map[string]any); ok {
		if msg := extractErrorMessageFromMap(nested); msg != "" {
			return msg
		}
	}
	if v, ok := payload["error"].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return ""
}

func compactBodyPreview(rawBody []byte, maxLen int) string {
	trimmed := strings.TrimSpace(string(rawBody))
	if trimmed == "" {
		return ""
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	if len(clean) <= maxLen {
		return clean
	}
	return clean[:maxLen] + "..."
}

func upstreamRequestID(headers http.Header) string {
	if headers == nil {
		return ""
	}
	for _, key := range []string{"x-request-id", "request-id", "cf-ray"} {
		if v := strings.TrimSpace(headers.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

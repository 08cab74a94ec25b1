package server

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ragstack/go-ragproxy/internal/config"
)

var debugDumpMu sync.Mutex

// allowedRequestHeaders mirrors the header list the frontend is permitted to
// send on cross-origin requests.
const allowedRequestHeaders = "Accept, Accept-Language, Content-Language, Content-Type, Authorization, X-Requested-With, Access-Control-Request-Method, Access-Control-Request-Headers"

func corsMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if _, ok := allowed[origin]; ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", allowedRequestHeaders)
			h.Set("Access-Control-Expose-Headers", "*")
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

func verboseMiddleware(cfg *config.ServerConfig, next http.Handler) http.Handler {
	if cfg == nil || !cfg.Verbose {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get("X-Request-Id"),
		)
		next.ServeHTTP(w, r)
	})
}

func debugMiddleware(cfg *config.ServerConfig, next http.Handler) http.Handler {
	if cfg == nil || !cfg.Debug {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dump, err := httputil.DumpRequest(r, true)
		if err != nil {
			slog.Error("request.dump.failed", "method", r.Method, "path", r.URL.Path, "error", err)
		} else {
			writeDebugDumpBlock("INBOUND REQUEST", dump)
		}
		next.ServeHTTP(w, r)
	})
}

func writeDebugDumpBlock(title string, data []byte) {
	debugDumpMu.Lock()
	defer debugDumpMu.Unlock()

	os.Stderr.WriteString("===== " + strings.TrimSpace(title) + " BEGIN =====\n")
	if len(data) > 0 {
		os.Stderr.Write(data)
		if data[len(data)-1] != '\n' {
			os.Stderr.WriteString("\n")
		}
	}
	os.Stderr.WriteString("===== " + strings.TrimSpace(title) + " END =====\n")
}

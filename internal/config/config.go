package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	// BaseURLDefault is the Perplexity API root.
	BaseURLDefault = "https://api.perplexity.ai"
	// DefaultModel is used when a chat request does not name a model.
	DefaultModel = "sonar"
)

// ServerConfig holds all server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	Verbose        bool
	Debug          bool
	APIKey         string
	DeployHost     string
	FrontendPort   string
	AllowedOrigins []string
}

// BaseURL returns the Perplexity API root from env or default.
func BaseURL() string {
	if u := strings.TrimSpace(os.Getenv("PERPLEXITY_BASE_URL")); u != "" {
		return strings.TrimRight(u, "/")
	}
	return BaseURLDefault
}

// DefaultFromEnv creates a ServerConfig with defaults from environment variables.
func DefaultFromEnv() *ServerConfig {
	cfg := &ServerConfig{
		Host:         envOrDefault("RAGPROXY_HOST", "0.0.0.0"),
		Port:         envInt("RAGPROXY_PORT", 8000),
		Verbose:      envBool("RAGPROXY_VERBOSE"),
		Debug:        envBool("RAGPROXY_DEBUG"),
		APIKey:       strings.TrimSpace(os.Getenv("PERPLEXITY_API_KEY")),
		DeployHost:   envOrDefault("DEPLOY_HOST", "localhost"),
		FrontendPort: envOrDefault("FRONTEND_PORT", "3000"),
	}
	cfg.AllowedOrigins = BuildAllowedOrigins(cfg.DeployHost, cfg.FrontendPort)
	return cfg
}

// Validate checks that required settings are present.
func (c *ServerConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PERPLEXITY_API_KEY environment variable is required")
	}
	return nil
}

// BuildAllowedOrigins lists the frontend origins the server accepts
// cross-origin requests from: the deploy host plus local development hosts.
func BuildAllowedOrigins(deployHost, frontendPort string) []string {
	origins := []string{
		"http://" + deployHost + ":" + frontendPort,
		"https://" + deployHost + ":" + frontendPort,
		"http://localhost:" + frontendPort,
		"http://127.0.0.1:" + frontendPort,
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:3003",
		"http://127.0.0.1:3003",
	}

	var unique []string
	seen := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		unique = append(unique, o)
	}
	return unique
}

func envOrDefault(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !config.GetEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    config.GetEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   config.GetEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: config.GetEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTimeout:     config.GetEnvDuration("RATE_LIMIT_IDLE_TIMEOUT", time.Hour),
		Whitelist:       parseIPList(config.GetEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(config.GetEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// LLM-backed operations
		{Path: "/v1/optimize", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/v1/optimize/stream", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/v1/generate/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/v1/assistant/chat", Method: "POST", Limit: 120, Window: time.Hour, Burst: 10},

		// Browser and compiler work
		{Path: "/v1/jobs/import", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/v1/pdf", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},

		// Credential endpoints
		{Path: "/v1/auth/", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Writes
		{Path: "/v1/profile", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/profile/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/v1/jobs", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

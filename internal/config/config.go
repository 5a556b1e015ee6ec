// Package config loads service configuration from a JSON file, the
// environment and CLI flags, in increasing order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/llm"
)

// Duration is a time.Duration that reads "90s"-style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the service configuration. All fields are optional in the file;
// Default fills the gaps.
type Config struct {
	Port int `json:"port,omitempty"`

	LLMProvider string `json:"llm_provider,omitempty"` // gemini, groq or openai
	APIKey      string `json:"api_key,omitempty"`
	LLMBaseURL  string `json:"llm_base_url,omitempty"`

	MongoURI      string `json:"mongo_uri,omitempty"`
	MongoDatabase string `json:"mongo_database,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL      string `json:"redis_url,omitempty"`    // empty keeps sessions in memory

	SessionTTL Duration `json:"session_ttl,omitempty"`

	PDFLatex   string               `json:"pdflatex,omitempty"`
	UseBrowser bool                 `json:"use_browser,omitempty"` // headless Chrome fallback for job import
	Archive    export.ArchiveConfig `json:"archive,omitempty"`

	CORSOrigins         []string `json:"cors_origins,omitempty"`
	RequireSubscription bool     `json:"require_subscription,omitempty"`
	Verbose             bool     `json:"verbose,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:          8080,
		LLMProvider:   string(llm.ProviderGemini),
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "resume_builder",
		SessionTTL:    Duration(time.Hour),
		PDFLatex:      "pdflatex",
		CORSOrigins:   []string{"*"},
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads path when non-empty, fills defaults and applies the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	merged := cfg.MergeWithDefaults(Default())
	merged.ApplyEnv()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	c.Port = GetEnvInt("PORT", c.Port)
	c.LLMProvider = GetEnvString("LLM_PROVIDER", c.LLMProvider)
	c.LLMBaseURL = GetEnvString("LLM_BASE_URL", c.LLMBaseURL)
	c.APIKey = GetEnvString("LLM_API_KEY", GetEnvString(providerKeyEnv(c.LLMProvider), c.APIKey))

	c.MongoURI = GetEnvString("MONGO_URI", c.MongoURI)
	c.MongoDatabase = GetEnvString("MONGO_DATABASE", c.MongoDatabase)
	c.DatabaseURL = GetEnvString("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = GetEnvString("REDIS_URL", c.RedisURL)
	c.SessionTTL = Duration(GetEnvDuration("SESSION_TTL", time.Duration(c.SessionTTL)))

	c.PDFLatex = GetEnvString("PDFLATEX_PATH", c.PDFLatex)
	c.UseBrowser = GetEnvBool("USE_BROWSER", c.UseBrowser)
	c.Archive.Bucket = GetEnvString("S3_BUCKET", c.Archive.Bucket)
	c.Archive.Region = GetEnvString("S3_REGION", c.Archive.Region)
	c.Archive.Endpoint = GetEnvString("S3_ENDPOINT", c.Archive.Endpoint)
	c.Archive.AccessKey = GetEnvString("S3_ACCESS_KEY_ID", c.Archive.AccessKey)
	c.Archive.SecretKey = GetEnvString("S3_SECRET_ACCESS_KEY", c.Archive.SecretKey)
	c.Archive.Prefix = GetEnvString("S3_PREFIX", c.Archive.Prefix)

	c.CORSOrigins = GetEnvList("CORS_ORIGINS", c.CORSOrigins)
	c.RequireSubscription = GetEnvBool("REQUIRE_SUBSCRIPTION", c.RequireSubscription)
}

func providerKeyEnv(provider string) string {
	switch llm.Provider(provider) {
	case llm.ProviderGroq:
		return "GROQ_API_KEY"
	case llm.ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// Validate checks that the configuration has valid values.
// Connection strings are checked when the service dials them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	switch llm.Provider(c.LLMProvider) {
	case llm.ProviderGemini, llm.ProviderGroq, llm.ProviderOpenAI:
	default:
		return fmt.Errorf("config error: unknown 'llm_provider' %q", c.LLMProvider)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config error: 'session_ttl' must be non-negative")
	}
	if c.RequireSubscription && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'require_subscription' needs 'database_url'")
	}
	if c.Archive.Endpoint != "" && c.Archive.Bucket == "" {
		return fmt.Errorf("config error: 'archive.endpoint' set without 'archive.bucket'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// Bool fields are not merged since unset and false look the same.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LLMBaseURL == "" {
		result.LLMBaseURL = defaults.LLMBaseURL
	}
	if result.MongoURI == "" {
		result.MongoURI = defaults.MongoURI
	}
	if result.MongoDatabase == "" {
		result.MongoDatabase = defaults.MongoDatabase
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.SessionTTL == 0 {
		result.SessionTTL = defaults.SessionTTL
	}
	if result.PDFLatex == "" {
		result.PDFLatex = defaults.PDFLatex
	}
	if !result.Archive.Enabled() {
		result.Archive = defaults.Archive
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	return result
}

// LLMConfig returns the model configuration for the selected provider.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigForProvider(c.LLMProvider)
	if c.LLMBaseURL != "" {
		cfg.BaseURL = c.LLMBaseURL
	}
	return cfg
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *Config) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL)
}

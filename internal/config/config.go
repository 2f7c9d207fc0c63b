package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted by index.backend and sessions.backend.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the agent service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Agent     AgentConfig     `yaml:"agent"`
	Model     ModelConfig     `yaml:"model"`
	Services  ServicesConfig  `yaml:"services"`
	Auth      AuthConfig      `yaml:"auth"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int    `yaml:"port"`
	BasePath        string `yaml:"base_path"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis/Valkey connection settings. Only needed for redis backends.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimension        int    `yaml:"dimension"`         // target dimension of every stored vector
	NativeDimensions int    `yaml:"native_dimensions"` // requested from the provider, 0 = model default
	Cache            bool   `yaml:"cache"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	Backend         string `yaml:"backend"` // redis, memory
	Name            string `yaml:"name"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	TimeoutSec      int    `yaml:"timeout_sec"`
}

// RetrievalConfig holds knowledge retrieval defaults.
type RetrievalConfig struct {
	TopK            int      `yaml:"top_k"`
	MinScore        *float64 `yaml:"min_score"` // nil: 0.3; 0 disables filtering
	MaxContextChars int      `yaml:"max_context_chars"`
}

// ChunkingConfig holds document chunking settings.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// SessionsConfig holds conversation store settings.
type SessionsConfig struct {
	Backend      string `yaml:"backend"` // memory, redis
	MaxHistory   int    `yaml:"max_history"`
	HistoryLimit int    `yaml:"history_limit"` // messages passed to the model per turn
	TTLMinutes   int    `yaml:"ttl_minutes"`   // 0 = no expiry
}

// AgentConfig holds orchestration settings.
type AgentConfig struct {
	MaxIterations  int      `yaml:"max_iterations"`
	DomainKeywords []string `yaml:"domain_keywords"`
	Greetings      []string `yaml:"greetings"`
}

// ModelConfig holds the chat model settings.
type ModelConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// ServicesConfig holds the downstream business service endpoints.
type ServicesConfig struct {
	AuthURL         string `yaml:"auth_url"`
	VehiclesURL     string `yaml:"vehicles_url"`
	AppointmentsURL string `yaml:"appointments_url"`
	JobsURL         string `yaml:"jobs_url"`
	TimeLogsURL     string `yaml:"time_logs_url"`
	TimeoutSec      int    `yaml:"timeout_sec"`
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	AdminAPIKeys []string `yaml:"admin_api_keys"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
//
//nolint:gocyclo // flat list of defaults
func (c *Config) ApplyDefaults() {
	if c.HTTP.BasePath == "" {
		c.HTTP.BasePath = "/api/v1/ai"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Dimension <= 0 {
		c.Embedding.Dimension = 384
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}

	if c.Index.Backend == "" {
		c.Index.Backend = BackendRedis
	}
	if c.Index.Name == "" {
		c.Index.Name = "techtorque-kb"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.TimeoutSec <= 0 {
		c.Index.TimeoutSec = 5
	}

	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.MinScore == nil {
		minScore := 0.3
		c.Retrieval.MinScore = &minScore
	}
	if c.Retrieval.MaxContextChars <= 0 {
		c.Retrieval.MaxContextChars = 2000
	}

	if c.Chunking.Size <= 0 {
		c.Chunking.Size = 500
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = 50
	}

	if c.Sessions.Backend == "" {
		c.Sessions.Backend = BackendMemory
	}
	if c.Sessions.MaxHistory <= 0 {
		c.Sessions.MaxHistory = 10
	}
	if c.Sessions.HistoryLimit <= 0 {
		c.Sessions.HistoryLimit = 5
	}

	if c.Agent.MaxIterations <= 0 {
		c.Agent.MaxIterations = 5
	}

	if c.Model.TimeoutSec <= 0 {
		c.Model.TimeoutSec = 30
	}

	if c.Services.TimeoutSec <= 0 {
		c.Services.TimeoutSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.HTTP.BasePath, "/") {
		return fmt.Errorf("http.base_path must start with /, got %q", c.HTTP.BasePath)
	}
	if err := validateBackend("index.backend", c.Index.Backend); err != nil {
		return err
	}
	if err := validateBackend("sessions.backend", c.Sessions.Backend); err != nil {
		return err
	}
	if c.NeedsDatabase() && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for redis backends")
	}
	if ms := c.Retrieval.MinScore; ms != nil && (*ms < 0 || *ms > 1) {
		return fmt.Errorf("retrieval.min_score must be between 0 and 1, got %g", *ms)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, chunking.size), got %d", c.Chunking.Overlap)
	}
	if c.Sessions.HistoryLimit > c.Sessions.MaxHistory {
		return fmt.Errorf("sessions.history_limit (%d) must not exceed sessions.max_history (%d)",
			c.Sessions.HistoryLimit, c.Sessions.MaxHistory)
	}
	return nil
}

// NeedsDatabase reports whether any backend is Redis-based.
func (c *Config) NeedsDatabase() bool {
	return c.Index.Backend == BackendRedis || c.Sessions.Backend == BackendRedis || c.Embedding.Cache
}

// Timeout returns the per-request embedding timeout.
func (c EmbeddingConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// Timeout returns the per-call index timeout.
func (c IndexConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// Timeout returns the per-invocation model timeout.
func (c ModelConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// Timeout returns the per-call downstream service timeout.
func (c ServicesConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// TTL returns the session expiry, zero when sessions never expire.
func (c SessionsConfig) TTL() time.Duration { return time.Duration(c.TTLMinutes) * time.Minute }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func validateBackend(field, v string) error {
	switch v {
	case BackendRedis, BackendMemory:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", field, BackendRedis, BackendMemory, v)
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to the source file, for tests run from package directories
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

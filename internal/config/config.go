package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding provider names.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
)

// Corpus source names.
const (
	SourceCSV     = "csv"
	SourceParquet = "parquet"
	SourceSQL     = "sql"
	SourceRedis   = "redis"
)

// Config holds the plotsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider            string        `yaml:"provider"` // hashing (default), openai
	OpenAI              OpenAIConfig  `yaml:"openai"`
	Hashing             HashingConfig `yaml:"hashing"`
	DocumentInstruction string        `yaml:"document_instruction"`
	QueryInstruction    string        `yaml:"query_instruction"`
	QueryCacheSize      *int          `yaml:"query_cache_size"` // nil = default, 0 = disabled
}

// OpenAIConfig holds settings for an OpenAI-compatible embedding API.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// HashingConfig holds settings for the offline feature-hashing embedder.
type HashingConfig struct {
	Dimensions int `yaml:"dimensions"`
}

// CorpusConfig describes where documents come from and how the index is built.
type CorpusConfig struct {
	Source          string      `yaml:"source"` // csv (default), parquet, sql, redis
	Path            string      `yaml:"path"`
	DSN             string      `yaml:"dsn"`
	Query           string      `yaml:"query"`
	Redis           RedisConfig `yaml:"redis"`
	BuildTimeoutSec int         `yaml:"build_timeout_sec"`
	Eager           bool        `yaml:"eager"`
}

// RedisConfig holds connection settings for a Redis/Valkey document source.
type RedisConfig struct {
	Addrs      []string `yaml:"addrs"`
	Password   string   `yaml:"password"`
	KeyPattern string   `yaml:"key_pattern"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	DefaultK int `yaml:"default_k"`
}

// Default query cache size when the key is absent.
const defaultQueryCacheSize = 1024

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadOrDefault behaves like Load but falls back to defaults when no file exists for env.
func LoadOrDefault(env string) (Config, error) {
	cfg, err := Load(env)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderHashing
	}
	if c.Embedding.Hashing.Dimensions <= 0 {
		c.Embedding.Hashing.Dimensions = 384
	}
	if c.Embedding.OpenAI.BaseURL == "" {
		c.Embedding.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.Embedding.OpenAI.Model == "" {
		c.Embedding.OpenAI.Model = "text-embedding-3-small"
	}
	if c.Embedding.QueryCacheSize == nil {
		size := defaultQueryCacheSize
		c.Embedding.QueryCacheSize = &size
	}
	if c.Corpus.Source == "" {
		c.Corpus.Source = SourceCSV
	}
	if c.Corpus.Path == "" && c.Corpus.Source == SourceCSV {
		c.Corpus.Path = "data/movies.csv"
	}
	if c.Corpus.Query == "" {
		c.Corpus.Query = "SELECT title, plot FROM movies ORDER BY id"
	}
	if c.Corpus.Redis.KeyPattern == "" {
		c.Corpus.Redis.KeyPattern = "movie:*"
	}
	if c.Corpus.BuildTimeoutSec <= 0 {
		c.Corpus.BuildTimeoutSec = 300
	}
	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Embedding.Provider {
	case ProviderHashing:
	case ProviderOpenAI:
		if c.Embedding.OpenAI.APIKey == "" {
			return fmt.Errorf("embedding.openai.api_key is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderHashing, ProviderOpenAI, c.Embedding.Provider)
	}
	if c.Embedding.QueryCacheSize != nil && *c.Embedding.QueryCacheSize < 0 {
		return fmt.Errorf("embedding.query_cache_size must not be negative")
	}

	switch c.Corpus.Source {
	case SourceCSV, SourceParquet:
		if c.Corpus.Path == "" {
			return fmt.Errorf("corpus.path is required for source %q", c.Corpus.Source)
		}
	case SourceSQL:
		if c.Corpus.DSN == "" {
			return fmt.Errorf("corpus.dsn is required for source %q", SourceSQL)
		}
	case SourceRedis:
		if len(c.Corpus.Redis.Addrs) == 0 {
			return fmt.Errorf("corpus.redis.addrs is required for source %q", SourceRedis)
		}
	default:
		return fmt.Errorf("corpus.source must be one of csv, parquet, sql, redis, got %q", c.Corpus.Source)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
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
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

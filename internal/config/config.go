// Package config loads the docrank configuration from per-environment YAML
// files with ${VAR} env expansion.
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

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Config holds the docrank configuration.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Lexical   LexicalConfig   `yaml:"lexical"`
	Weights   WeightsConfig   `yaml:"weights"`
	Loader    LoaderConfig    `yaml:"loader"`
	Output    OutputConfig    `yaml:"output"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // metrics label, default "tei"
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

// CacheConfig holds the optional Redis embedding cache settings. An empty
// addrs list disables the cache.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TTLHours         int      `yaml:"ttl_hours"` // 0 = no expiry
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// LexicalConfig holds TF-IDF fitting settings.
type LexicalConfig struct {
	MaxFeatures int `yaml:"max_features"` // 0 = unlimited
	// StopWords replaces the built-in English list when present. An
	// explicit empty list disables stop-word removal.
	StopWords []string `yaml:"stop_words"`
}

// WeightsConfig holds the four signal weights.
type WeightsConfig struct {
	Similarity        float64 `yaml:"similarity"`
	TFIDF             float64 `yaml:"tfidf"`
	KeywordOccurrence float64 `yaml:"keyword_occurrence"`
	Position          float64 `yaml:"position"`
}

// ToDomain converts the YAML weight section to the domain type.
func (w WeightsConfig) ToDomain() domain.Weights {
	return domain.Weights{
		Similarity:        w.Similarity,
		TFIDF:             w.TFIDF,
		KeywordOccurrence: w.KeywordOccurrence,
		Position:          w.Position,
	}
}

// LoaderConfig holds document loading settings.
type LoaderConfig struct {
	Folder    string `yaml:"folder"`
	Extension string `yaml:"extension"`
	Encoding  string `yaml:"encoding"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	TimestampFormat string `yaml:"timestamp_format"` // Go time layout
}

// MetricsConfig holds the optional debug listener settings. An empty addr
// disables the listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: by env)
}

// Load reads configuration from a YAML file by environment name (local,
// dev, prod). A missing file is not an error: every option has a default.
func Load(env string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Clean(findConfigPath(env)))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting
// to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "tei"
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "http://localhost:8080/v1"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "bert-base-uncased"
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 32
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Weights == (WeightsConfig{}) {
		w := domain.DefaultWeights()
		c.Weights = WeightsConfig{
			Similarity:        w.Similarity,
			TFIDF:             w.TFIDF,
			KeywordOccurrence: w.KeywordOccurrence,
			Position:          w.Position,
		}
	}
	if c.Loader.Extension == "" {
		c.Loader.Extension = ".txt"
	}
	if c.Loader.Encoding == "" {
		c.Loader.Encoding = "utf-8"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be at least 1, got %d", c.Embedding.BatchSize)
	}
	if c.Lexical.MaxFeatures < 0 {
		return fmt.Errorf("lexical.max_features must not be negative, got %d", c.Lexical.MaxFeatures)
	}
	for name, v := range map[string]float64{
		"weights.similarity":         c.Weights.Similarity,
		"weights.tfidf":              c.Weights.TFIDF,
		"weights.keyword_occurrence": c.Weights.KeywordOccurrence,
		"weights.position":           c.Weights.Position,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, v)
		}
	}
	if c.Weights.Similarity+c.Weights.TFIDF+c.Weights.KeywordOccurrence+c.Weights.Position == 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	if c.Cache.TTLHours < 0 {
		return fmt.Errorf("cache.ttl_hours must not be negative, got %d", c.Cache.TTLHours)
	}
	return nil
}

// findConfigPath locates config/config.{env}.yaml near the working
// directory or the project root.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("config.%s.yaml", env)

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

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
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

// Package config loads tiermap settings.
//
// Sources are applied in this order, later ones winning: built-in defaults,
// the YAML file named by TIERMAP_CONFIG, then environment variables.
// .env.local and .env are loaded into the environment first when present;
// variables already set in the process are never overwritten.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/tiermap/internal/engine/taxonomy"
	"github.com/crimson-sun/tiermap/internal/model"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Config holds all tiermap configuration.
type Config struct {
	Data        DataConfig      `yaml:"data"`
	Embedding   EmbeddingConfig `yaml:"embedding"`
	Reasoning   ReasoningConfig `yaml:"reasoning"`
	Engine      EngineConfig    `yaml:"engine"`
	Batch       BatchConfig     `yaml:"batch"`
	Output      OutputConfig    `yaml:"output"`
	LogLevel    string          `yaml:"log_level"`
	MetricsAddr string          `yaml:"metrics_addr"`
}

// DataConfig locates the taxonomy and the domain index. Empty paths select
// the built-in taxonomy and an index embedded at first use.
type DataConfig struct {
	TaxonomyPath     string `yaml:"taxonomy"`
	DescriptionsPath string `yaml:"descriptions"`
	IndexDir         string `yaml:"index_dir"`
	TierDepth        int    `yaml:"tier_depth"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"` // "onnx" or "openai"
	ModelPath string        `yaml:"model_path"`
	VocabPath string        `yaml:"vocab_path"`
	LibPath   string        `yaml:"lib_path"`
	Lowercase bool          `yaml:"lowercase"`
	Threads   int           `yaml:"threads"`
	Endpoint  string        `yaml:"endpoint"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ReasoningConfig selects and configures the reasoning provider.
type ReasoningConfig struct {
	Provider    string        `yaml:"provider"` // "anthropic" or "none"
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	RPS         float64       `yaml:"rps"` // 0 disables rate limiting
	Burst       int           `yaml:"burst"`
	MaxInFlight int           `yaml:"max_in_flight"`
}

// EngineConfig holds per-call classification defaults.
type EngineConfig struct {
	MaxResults     int     `yaml:"max_results"`
	MinDomainScore float64 `yaml:"min_domain_score"`
	DisableFine    bool    `yaml:"disable_fine"`
	ProfileFields  string  `yaml:"profile_fields"` // "core" or "extended"
}

// BatchConfig holds batch run settings.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// OutputConfig selects where results go and how they are rendered.
type OutputConfig struct {
	Sink         string `yaml:"sink"`   // comma-separated: "stdout", "file", "csv", "webhook", "sqlite"
	Format       string `yaml:"format"` // stdout rendering: "json", "pretty", "text"
	Detail       string `yaml:"detail"` // "minimal" or "full"
	Path         string `yaml:"path"`
	CSVPath      string `yaml:"csv_path"` // defaults to Path
	WebhookURL   string `yaml:"webhook_url"`
	WebhookToken string `yaml:"webhook_token"`
	SQLitePath   string `yaml:"sqlite_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Data: DataConfig{TierDepth: 2},
		Embedding: EmbeddingConfig{
			Provider:  "onnx",
			ModelPath: "models/model.onnx",
			VocabPath: "models/vocab.txt",
			Lowercase: true,
			Timeout:   30 * time.Second,
		},
		Reasoning: ReasoningConfig{
			Provider:    "anthropic",
			Model:       "claude-haiku-4-5",
			Timeout:     30 * time.Second,
			MaxTokens:   1000,
			MaxInFlight: 5,
		},
		Engine: EngineConfig{
			MaxResults:    2,
			ProfileFields: "core",
		},
		Batch:    BatchConfig{Concurrency: 5},
		Output:   OutputConfig{Sink: "stdout", Format: "json", Detail: "full"},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment.
func Load() (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, err
	}
	cfg := Default()
	if path := os.Getenv("TIERMAP_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// loadEnvFiles loads .env.local, then .env. Missing files are ignored.
func loadEnvFiles() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", name, err)
		}
	}
	return nil
}

// mergeFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Data.TaxonomyPath = getenv("TIERMAP_TAXONOMY", c.Data.TaxonomyPath)
	c.Data.DescriptionsPath = getenv("TIERMAP_DESCRIPTIONS", c.Data.DescriptionsPath)
	c.Data.IndexDir = getenv("TIERMAP_INDEX_DIR", c.Data.IndexDir)
	c.Data.TierDepth = getenvInt("TIERMAP_TIER_DEPTH", c.Data.TierDepth)

	c.Embedding.Provider = getenv("TIERMAP_EMBEDDER", c.Embedding.Provider)
	c.Embedding.ModelPath = getenv("TIERMAP_MODEL_PATH", c.Embedding.ModelPath)
	c.Embedding.VocabPath = getenv("TIERMAP_VOCAB_PATH", c.Embedding.VocabPath)
	c.Embedding.LibPath = getenv("TIERMAP_ORT_LIB", c.Embedding.LibPath)
	c.Embedding.Lowercase = getenvBool("TIERMAP_LOWERCASE", c.Embedding.Lowercase)
	c.Embedding.Threads = getenvInt("TIERMAP_ORT_THREADS", c.Embedding.Threads)
	c.Embedding.Endpoint = getenv("TIERMAP_EMBED_ENDPOINT", c.Embedding.Endpoint)
	c.Embedding.Model = getenv("TIERMAP_EMBED_MODEL", c.Embedding.Model)
	c.Embedding.APIKey = getenv("TIERMAP_EMBED_API_KEY", c.Embedding.APIKey)
	c.Embedding.Timeout = getenvDuration("TIERMAP_EMBED_TIMEOUT", c.Embedding.Timeout)

	c.Reasoning.Provider = getenv("TIERMAP_REASONER", c.Reasoning.Provider)
	c.Reasoning.APIKey = getenv("ANTHROPIC_API_KEY", c.Reasoning.APIKey)
	c.Reasoning.APIKey = getenv("TIERMAP_REASONING_API_KEY", c.Reasoning.APIKey)
	c.Reasoning.Model = getenv("TIERMAP_REASONING_MODEL", c.Reasoning.Model)
	c.Reasoning.BaseURL = getenv("TIERMAP_REASONING_BASE_URL", c.Reasoning.BaseURL)
	c.Reasoning.Timeout = getenvDuration("TIERMAP_REASONING_TIMEOUT", c.Reasoning.Timeout)
	c.Reasoning.MaxTokens = getenvInt("TIERMAP_REASONING_MAX_TOKENS", c.Reasoning.MaxTokens)
	c.Reasoning.RPS = getenvFloat("TIERMAP_REASONING_RPS", c.Reasoning.RPS)
	c.Reasoning.Burst = getenvInt("TIERMAP_REASONING_BURST", c.Reasoning.Burst)
	c.Reasoning.MaxInFlight = getenvInt("TIERMAP_REASONING_MAX_INFLIGHT", c.Reasoning.MaxInFlight)

	c.Engine.MaxResults = getenvInt("TIERMAP_MAX_RESULTS", c.Engine.MaxResults)
	c.Engine.MinDomainScore = getenvFloat("TIERMAP_MIN_DOMAIN_SCORE", c.Engine.MinDomainScore)
	c.Engine.DisableFine = getenvBool("TIERMAP_DISABLE_FINE", c.Engine.DisableFine)
	c.Engine.ProfileFields = getenv("TIERMAP_PROFILE_FIELDS", c.Engine.ProfileFields)

	c.Batch.Concurrency = getenvInt("TIERMAP_CONCURRENCY", c.Batch.Concurrency)

	c.Output.Sink = getenv("TIERMAP_OUTPUT", c.Output.Sink)
	c.Output.Format = getenv("TIERMAP_FORMAT", c.Output.Format)
	if getenvBool("TIERMAP_PRETTY", false) {
		c.Output.Format = "pretty"
	}
	c.Output.Detail = getenv("TIERMAP_OUTPUT_DETAIL", c.Output.Detail)
	c.Output.Path = getenv("TIERMAP_OUTPUT_PATH", c.Output.Path)
	c.Output.CSVPath = getenv("TIERMAP_CSV_PATH", c.Output.CSVPath)
	c.Output.WebhookURL = getenv("TIERMAP_WEBHOOK_URL", c.Output.WebhookURL)
	c.Output.WebhookToken = getenv("TIERMAP_WEBHOOK_TOKEN", c.Output.WebhookToken)
	c.Output.SQLitePath = getenv("TIERMAP_SQLITE_PATH", c.Output.SQLitePath)

	c.LogLevel = getenv("TIERMAP_LOG_LEVEL", c.LogLevel)
	c.MetricsAddr = getenv("TIERMAP_METRICS_ADDR", c.MetricsAddr)
}

// Validate checks the configuration and reports every problem at once.
// Each problem is a configuration error at the start stage.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, model.Configf(format, args...))
	}

	if c.Data.TierDepth < taxonomy.MinDepth || c.Data.TierDepth > taxonomy.MaxDepth {
		bad("tier depth must be between %d and %d, got %d", taxonomy.MinDepth, taxonomy.MaxDepth, c.Data.TierDepth)
	}
	for _, p := range []struct{ name, path string }{
		{"taxonomy", c.Data.TaxonomyPath},
		{"descriptions", c.Data.DescriptionsPath},
	} {
		if p.path == "" {
			continue
		}
		if _, err := os.Stat(p.path); err != nil {
			bad("%s file not found: %s", p.name, p.path)
		}
	}

	switch c.Embedding.Provider {
	case "onnx":
		if _, err := os.Stat(c.Embedding.ModelPath); err != nil {
			bad("embedding model file not found: %s", c.Embedding.ModelPath)
		}
		if _, err := os.Stat(c.Embedding.VocabPath); err != nil {
			bad("embedding vocab file not found: %s", c.Embedding.VocabPath)
		}
	case "openai":
		if c.Embedding.Endpoint == "" {
			bad("TIERMAP_EMBED_ENDPOINT is required for the openai embedder")
		}
		if c.Embedding.Model == "" {
			bad("TIERMAP_EMBED_MODEL is required for the openai embedder")
		}
	default:
		bad("unknown embedding provider %q (want onnx or openai)", c.Embedding.Provider)
	}
	if c.Embedding.Timeout < 0 {
		bad("embedding timeout must not be negative")
	}

	switch c.Reasoning.Provider {
	case "anthropic", "none":
	default:
		bad("unknown reasoning provider %q (want anthropic or none)", c.Reasoning.Provider)
	}
	if c.Reasoning.Timeout < 0 {
		bad("reasoning timeout must not be negative")
	}
	if c.Reasoning.RPS < 0 {
		bad("reasoning rps must not be negative")
	}
	if c.Reasoning.MaxInFlight < 1 {
		bad("reasoning max in flight must be at least 1, got %d", c.Reasoning.MaxInFlight)
	}

	if c.Engine.MaxResults < 1 {
		bad("max results must be at least 1, got %d", c.Engine.MaxResults)
	}
	if c.Engine.MinDomainScore < 0 || c.Engine.MinDomainScore > 1 {
		bad("min domain score must be between 0 and 1, got %v", c.Engine.MinDomainScore)
	}
	switch c.Engine.ProfileFields {
	case "core", "extended":
	default:
		bad("profile fields must be core or extended, got %q", c.Engine.ProfileFields)
	}

	if c.Batch.Concurrency < 1 {
		bad("batch concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}

	for _, sink := range strings.Split(c.Output.Sink, ",") {
		switch sink = strings.TrimSpace(sink); sink {
		case "stdout":
		case "file":
			if c.Output.Path == "" {
				bad("TIERMAP_OUTPUT_PATH is required for the file output")
			}
		case "csv":
			if c.Output.CSVPath == "" && c.Output.Path == "" {
				bad("TIERMAP_OUTPUT_PATH or TIERMAP_CSV_PATH is required for the csv output")
			}
		case "webhook":
			if c.Output.WebhookURL == "" {
				bad("TIERMAP_WEBHOOK_URL is required for the webhook output")
			}
		case "sqlite":
			if c.Output.SQLitePath == "" {
				bad("TIERMAP_SQLITE_PATH is required for the sqlite output")
			}
		default:
			bad("unknown output %q", sink)
		}
	}
	switch c.Output.Format {
	case "json", "pretty", "text":
	default:
		bad("unknown output format %q (want json, pretty or text)", c.Output.Format)
	}
	switch strings.ToLower(c.Output.Detail) {
	case "minimal", "full":
	default:
		bad("unknown output detail %q (want minimal or full)", c.Output.Detail)
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

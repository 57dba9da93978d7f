package model

import "time"

// Config holds the full runtime configuration
type Config struct {
	Batch        BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Extractor    ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	HTTP         HTTPConfig      `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Output       OutputConfig    `yaml:"output" mapstructure:"output"`
}

// BatchConfig tunes the batch scheduler
type BatchConfig struct {
	BatchSize        int           `yaml:"batch_size" mapstructure:"batch_size"`               // Documents per chunk
	ConcurrencyLimit int           `yaml:"concurrency_limit" mapstructure:"concurrency_limit"` // Max simultaneous extractions
	ItemTimeout      time.Duration `yaml:"item_timeout" mapstructure:"item_timeout"`           // Per-document extraction deadline
	MaxRetries       int           `yaml:"max_retries" mapstructure:"max_retries"`             // Retries after the first attempt
}

// ExtractorConfig selects and tunes the statement extractor capability
type ExtractorConfig struct {
	// Provider name: "heuristic" (offline, default) or "openai"
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name for LLM-backed providers
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for LLM-backed providers
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// BaseURL for custom endpoints
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout for provider API requests, in seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens for LLM responses
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// HTTPConfig tunes remote document fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// RateLimitConfig bounds outbound request rates per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig tunes the derived-comparison cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig tunes operator-facing output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Batch: BatchConfig{
			BatchSize:        10,
			ConcurrencyLimit: 5,
			ItemTimeout:      30 * time.Second,
			MaxRetries:       2,
		},
		Extractor: ExtractorConfig{
			Provider:  "heuristic",
			Timeout:   30,
			MaxTokens: 2000,
		},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Cracker/0.1 (+https://github.com/samrosenbaum/v0-cracker-sub007)",
			MaxBodyBytes: 2 << 20, // 2 MiB per document
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}

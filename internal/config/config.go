package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Chain node configuration (wallet balance reads)
	Chain ChainConfig

	// LLM configuration (recommendation summaries)
	LLM LLMConfig

	// Quote provider configuration
	Rates RatesConfig

	// Snapshot collector configuration
	Collector CollectorConfig

	// Logging configuration
	Log LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"monetizer"`
	Password        string        `envconfig:"DB_PASSWORD" default:"monetizer"`
	Name            string        `envconfig:"DB_NAME" default:"cryptomonetizer"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
	SessionTTL      time.Duration `envconfig:"API_SESSION_TTL" default:"30m"`
	PipelineTimeout time.Duration `envconfig:"API_PIPELINE_TIMEOUT" default:"45s"`
}

// ChainConfig holds EVM node connection settings for balance reads
type ChainConfig struct {
	RPCURL         string        `envconfig:"CHAIN_RPC_URL" default:"http://localhost:8545"`
	ChainID        int64         `envconfig:"CHAIN_ID" default:"1"`
	RequestTimeout time.Duration `envconfig:"CHAIN_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"CHAIN_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"CHAIN_RETRY_DELAY" default:"1s"`
}

// LLMConfig holds settings for the OpenAI-compatible completion API.
// Summaries are disabled when no API key is configured.
type LLMConfig struct {
	APIKey      string        `envconfig:"LLM_API_KEY" default:""`
	BaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	Model       string        `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"30s"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"512"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.4"`
}

// RatesConfig holds quote provider settings. QuoteWindow is how long a
// generated quote set stays stable: cached and fresh reads inside one
// window agree.
type RatesConfig struct {
	QuoteWindow time.Duration `envconfig:"RATES_QUOTE_WINDOW" default:"30s"`
}

// CollectorConfig holds snapshot collector settings
type CollectorConfig struct {
	MetricsPort  int           `envconfig:"COLLECTOR_METRICS_PORT" default:"8080"`
	PollInterval time.Duration `envconfig:"COLLECTOR_POLL_INTERVAL" default:"60s"`
	WorkerCount  int           `envconfig:"COLLECTOR_WORKER_COUNT" default:"4"`
	Retention    time.Duration `envconfig:"COLLECTOR_RETENTION" default:"72h"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Retry       RetryConfig       `yaml:"retry" mapstructure:"retry"`
	Upstream    UpstreamConfig    `yaml:"upstream" mapstructure:"upstream"`
	Refresh     RefreshConfig     `yaml:"refresh" mapstructure:"refresh"`
	Snapshot    SnapshotConfig    `yaml:"snapshot" mapstructure:"snapshot"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Development DevelopmentConfig `yaml:"development" mapstructure:"development"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// CacheConfig contains in-memory cache configuration
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	DefaultTTL time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	PriceTTL   time.Duration `yaml:"price_ttl" mapstructure:"price_ttl"`
	HistoryTTL time.Duration `yaml:"history_ttl" mapstructure:"history_ttl"`
}

// RetryConfig controla el reintento ante rate limiting del proveedor
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxJitter   time.Duration `yaml:"max_jitter" mapstructure:"max_jitter"`
}

// UpstreamConfig contains market data provider configuration
type UpstreamConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	Fallback    string        `yaml:"fallback" mapstructure:"fallback"` // vacío desactiva el fallback
	QuoteURL    string        `yaml:"quote_url" mapstructure:"quote_url"`
	ChartURL    string        `yaml:"chart_url" mapstructure:"chart_url"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	PacingDelay time.Duration `yaml:"pacing_delay" mapstructure:"pacing_delay"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Proxy       ProxyConfig   `yaml:"proxy" mapstructure:"proxy"`
}

// ProxyConfig contains outbound proxy settings; empty host means direct
type ProxyConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// Enabled reporta si hay un proxy configurado
func (p ProxyConfig) Enabled() bool {
	return p.Host != ""
}

// RefreshConfig controla el pool de refresco en segundo plano
type RefreshConfig struct {
	Workers   int           `yaml:"workers" mapstructure:"workers"`
	QueueSize int           `yaml:"queue_size" mapstructure:"queue_size"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SnapshotConfig contains history snapshot persistence configuration
type SnapshotConfig struct {
	Backend        string        `yaml:"backend" mapstructure:"backend"`
	ConnectRetries int           `yaml:"connect_retries" mapstructure:"connect_retries"`
	ConnectDelay   time.Duration `yaml:"connect_delay" mapstructure:"connect_delay"`
	Redis          RedisConfig   `yaml:"redis" mapstructure:"redis"`
	S3             S3Config      `yaml:"s3" mapstructure:"s3"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// S3Config contains S3-specific configuration
type S3Config struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// RateLimitConfig contains inbound rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// APIConfig contains request-level limits and response metadata
type APIConfig struct {
	MaxSymbolsPerRequest int    `yaml:"max_symbols_per_request" mapstructure:"max_symbols_per_request"`
	SourceName           string `yaml:"source_name" mapstructure:"source_name"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	Output     string `yaml:"output" mapstructure:"output"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// DevelopmentConfig contiene configuraciones para desarrollo y testing
type DevelopmentConfig struct {
	MockMode  bool `yaml:"mock_mode" mapstructure:"mock_mode"`
	DebugMode bool `yaml:"debug_mode" mapstructure:"debug_mode"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5100,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
			DefaultTTL: 60 * time.Second,
			PriceTTL:   60 * time.Second,
			HistoryTTL: 12 * time.Hour,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxJitter:   500 * time.Millisecond,
		},
		Upstream: UpstreamConfig{
			Provider:    "yahoo",
			QuoteURL:    "https://query1.finance.yahoo.com",
			ChartURL:    "https://query2.finance.yahoo.com",
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			PacingDelay: 1 * time.Second,
			Timeout:     10 * time.Second,
		},
		Refresh: RefreshConfig{
			Workers:   4,
			QueueSize: 64,
			Timeout:   30 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Backend:        "memory",
			ConnectRetries: 5,
			ConnectDelay:   5 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				DB:     0,
				Prefix: "market-data:",
			},
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "market-data",
			},
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		API: APIConfig{
			MaxSymbolsPerRequest: 50,
			SourceName:           "Yahoo Finance",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
		Development: DevelopmentConfig{
			MockMode:  false,
			DebugMode: false,
		},
	}
}

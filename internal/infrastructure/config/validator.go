package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validator valida la configuración cargada
type Validator struct{}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateRetry(config.Retry); err != nil {
		return fmt.Errorf("retry config validation failed: %w", err)
	}

	if err := v.validateUpstream(config.Upstream); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}

	if err := v.validateRefresh(config.Refresh); err != nil {
		return fmt.Errorf("refresh config validation failed: %w", err)
	}

	if err := v.validateSnapshot(config.Snapshot); err != nil {
		return fmt.Errorf("snapshot config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateAPI(config.API); err != nil {
		return fmt.Errorf("api config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	return nil
}

// validateServer valida la configuración del servidor
func (v *Validator) validateServer(config ServerConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d, must be between 1-65535", config.Port)
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	return nil
}

// validateCache valida la configuración del cache
func (v *Validator) validateCache(config CacheConfig) error {
	if config.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be positive, got: %d", config.MaxEntries)
	}

	ttls := map[string]time.Duration{
		"default_ttl": config.DefaultTTL,
		"price_ttl":   config.PriceTTL,
		"history_ttl": config.HistoryTTL,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got: %v", name, ttl)
		}
		if ttl > 7*24*time.Hour {
			return fmt.Errorf("%s too long: %v, max 7 days", name, ttl)
		}
	}

	return nil
}

// validateRetry valida la política de reintentos
func (v *Validator) validateRetry(config RetryConfig) error {
	if config.MaxAttempts < 1 || config.MaxAttempts > 10 {
		return fmt.Errorf("max_attempts must be between 1-10, got: %d", config.MaxAttempts)
	}

	if config.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be positive, got: %v", config.BaseDelay)
	}

	if config.MaxJitter < 0 {
		return fmt.Errorf("max_jitter cannot be negative, got: %v", config.MaxJitter)
	}

	return nil
}

// validateUpstream valida la configuración del proveedor
func (v *Validator) validateUpstream(config UpstreamConfig) error {
	validProviders := []string{"yahoo", "financego", "mock"}
	if !contains(validProviders, config.Provider) {
		return fmt.Errorf("invalid provider: %s, must be one of: %v", config.Provider, validProviders)
	}

	if config.Fallback != "" {
		if !contains(validProviders, config.Fallback) {
			return fmt.Errorf("invalid fallback provider: %s, must be one of: %v", config.Fallback, validProviders)
		}
		if config.Fallback == config.Provider {
			return fmt.Errorf("fallback provider must differ from provider %s", config.Provider)
		}
	}

	if config.Provider == "yahoo" {
		if err := v.validateURL(config.QuoteURL, "quote_url"); err != nil {
			return err
		}
		if err := v.validateURL(config.ChartURL, "chart_url"); err != nil {
			return err
		}
	}

	if config.PacingDelay < 0 {
		return fmt.Errorf("pacing_delay cannot be negative, got: %v", config.PacingDelay)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", config.Timeout)
	}

	if config.Proxy.Enabled() {
		if config.Proxy.Port <= 0 || config.Proxy.Port > 65535 {
			return fmt.Errorf("invalid proxy port: %d, must be between 1-65535", config.Proxy.Port)
		}
		if config.Proxy.Password != "" && config.Proxy.Username == "" {
			return fmt.Errorf("proxy password set without username")
		}
	}

	return nil
}

// validateRefresh valida el pool de refresco
func (v *Validator) validateRefresh(config RefreshConfig) error {
	if config.Workers < 1 || config.Workers > 64 {
		return fmt.Errorf("workers must be between 1-64, got: %d", config.Workers)
	}

	if config.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive, got: %d", config.QueueSize)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", config.Timeout)
	}

	return nil
}

// validateSnapshot valida el backend de snapshots
func (v *Validator) validateSnapshot(config SnapshotConfig) error {
	validBackends := []string{"memory", "redis", "s3", "none"}
	if !contains(validBackends, config.Backend) {
		return fmt.Errorf("invalid snapshot backend: %s, must be one of: %v", config.Backend, validBackends)
	}

	if config.ConnectRetries < 1 {
		return fmt.Errorf("connect_retries must be at least 1, got: %d", config.ConnectRetries)
	}

	if config.ConnectDelay < 0 {
		return fmt.Errorf("connect_delay cannot be negative, got: %v", config.ConnectDelay)
	}

	switch strings.ToLower(config.Backend) {
	case "redis":
		return v.validateRedis(config.Redis)
	case "s3":
		return v.validateS3(config.S3)
	}

	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if config.Addr == "" {
		return fmt.Errorf("redis addr cannot be empty")
	}

	if !strings.Contains(config.Addr, ":") {
		return fmt.Errorf("invalid redis addr format: %s, expected host:port", config.Addr)
	}

	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("invalid redis DB: %d, must be between 0-15", config.DB)
	}

	if config.TTL < 0 {
		return fmt.Errorf("redis ttl cannot be negative, got: %v", config.TTL)
	}

	return nil
}

// validateS3 valida la configuración de S3
func (v *Validator) validateS3(config S3Config) error {
	if config.Bucket == "" {
		return fmt.Errorf("s3 bucket cannot be empty")
	}

	if config.Region == "" {
		return fmt.Errorf("s3 region cannot be empty")
	}

	if config.Endpoint != "" {
		if err := v.validateURL(config.Endpoint, "s3 endpoint"); err != nil {
			return err
		}
	}

	if (config.AccessKey == "") != (config.SecretKey == "") {
		return fmt.Errorf("s3 access_key and secret_key must be set together")
	}

	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if config.Enabled {
		if config.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit requests_per_second must be positive when enabled, got: %v", config.RequestsPerSecond)
		}

		if config.Burst <= 0 {
			return fmt.Errorf("rate_limit burst must be positive when enabled, got: %d", config.Burst)
		}

		if config.RequestsPerSecond > 1000 {
			return fmt.Errorf("rate_limit requests_per_second too high: %v, max 1000", config.RequestsPerSecond)
		}

		if config.Burst > 10000 {
			return fmt.Errorf("rate_limit burst too high: %d, max 10000", config.Burst)
		}
	}

	return nil
}

// validateAPI valida los límites de la API
func (v *Validator) validateAPI(config APIConfig) error {
	if config.MaxSymbolsPerRequest < 1 || config.MaxSymbolsPerRequest > 500 {
		return fmt.Errorf("max_symbols_per_request must be between 1-500, got: %d", config.MaxSymbolsPerRequest)
	}

	if strings.TrimSpace(config.SourceName) == "" {
		return fmt.Errorf("source_name cannot be empty")
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(config.Level)) {
		return fmt.Errorf("invalid log level: %s, must be one of: %v", config.Level, validLevels)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, strings.ToLower(config.Format)) {
		return fmt.Errorf("invalid log format: %s, must be one of: %v", config.Format, validFormats)
	}

	if config.Output == "" {
		return fmt.Errorf("log output cannot be empty, use stdout, stderr or a file path")
	}

	return nil
}

// validateURL valida que una URL sea válida para HTTP/HTTPS
func (v *Validator) validateURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %s, error: %v", fieldName, rawURL, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid %s scheme: %s, must be http or https", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must have a host", fieldName)
	}

	return nil
}

// contains verifica si un slice contiene un elemento
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}

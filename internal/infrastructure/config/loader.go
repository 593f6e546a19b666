package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Loader handles configuration loading using Viper
type Loader struct {
	v          *viper.Viper
	configFile string
	envFile    string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v:       viper.New(),
		envFile: ".env",
	}
}

// WithConfigFile fuerza un archivo de configuración explícito
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// WithEnvFile cambia el archivo .env a cargar; vacío lo desactiva
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Load loads configuration from .env, files and environment variables
func (l *Loader) Load() (*Config, error) {
	// 1. .env antes que nada para que viper vea esas variables
	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	// 2. Configure Viper
	l.setupViper()

	// 3. Read configuration
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Sin config.yaml se usan solo env vars y defaults
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 4. Unmarshal a struct
	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Override with specific env vars (for compatibility)
	l.overrideWithEnvVars(config)

	return config, nil
}

// loadEnvFile carga el .env sin pisar variables ya definidas
func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	if err := godotenv.Load(l.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", l.envFile, err)
	}
	return nil
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper() {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")

		l.v.AddConfigPath("./configs")
		l.v.AddConfigPath("../configs")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("/etc/market-data")
	}

	// Prefix for env vars: MARKET_DATA_SERVER_PORT
	l.v.SetEnvPrefix("MARKET_DATA")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	l.setDefaults()
	l.bindEnvVars()
}

// setDefaults registra cada clave para que AutomaticEnv la resuelva en Unmarshal
func (l *Loader) setDefaults() {
	d := GetDefaultConfig()

	defaults := map[string]interface{}{
		"server.port":                    d.Server.Port,
		"server.shutdown_timeout":        d.Server.ShutdownTimeout,
		"server.cors_origins":            d.Server.CORSOrigins,
		"cache.max_entries":              d.Cache.MaxEntries,
		"cache.default_ttl":              d.Cache.DefaultTTL,
		"cache.price_ttl":                d.Cache.PriceTTL,
		"cache.history_ttl":              d.Cache.HistoryTTL,
		"retry.max_attempts":             d.Retry.MaxAttempts,
		"retry.base_delay":               d.Retry.BaseDelay,
		"retry.max_jitter":               d.Retry.MaxJitter,
		"upstream.provider":              d.Upstream.Provider,
		"upstream.fallback":              d.Upstream.Fallback,
		"upstream.quote_url":             d.Upstream.QuoteURL,
		"upstream.chart_url":             d.Upstream.ChartURL,
		"upstream.user_agent":            d.Upstream.UserAgent,
		"upstream.pacing_delay":          d.Upstream.PacingDelay,
		"upstream.timeout":               d.Upstream.Timeout,
		"upstream.proxy.host":            d.Upstream.Proxy.Host,
		"upstream.proxy.port":            d.Upstream.Proxy.Port,
		"upstream.proxy.username":        d.Upstream.Proxy.Username,
		"upstream.proxy.password":        d.Upstream.Proxy.Password,
		"refresh.workers":                d.Refresh.Workers,
		"refresh.queue_size":             d.Refresh.QueueSize,
		"refresh.timeout":                d.Refresh.Timeout,
		"snapshot.backend":               d.Snapshot.Backend,
		"snapshot.connect_retries":       d.Snapshot.ConnectRetries,
		"snapshot.connect_delay":         d.Snapshot.ConnectDelay,
		"snapshot.redis.addr":            d.Snapshot.Redis.Addr,
		"snapshot.redis.password":        d.Snapshot.Redis.Password,
		"snapshot.redis.db":              d.Snapshot.Redis.DB,
		"snapshot.redis.prefix":          d.Snapshot.Redis.Prefix,
		"snapshot.redis.ttl":             d.Snapshot.Redis.TTL,
		"snapshot.s3.bucket":             d.Snapshot.S3.Bucket,
		"snapshot.s3.region":             d.Snapshot.S3.Region,
		"snapshot.s3.endpoint":           d.Snapshot.S3.Endpoint,
		"snapshot.s3.access_key":         d.Snapshot.S3.AccessKey,
		"snapshot.s3.secret_key":         d.Snapshot.S3.SecretKey,
		"snapshot.s3.prefix":             d.Snapshot.S3.Prefix,
		"rate_limit.enabled":             d.RateLimit.Enabled,
		"rate_limit.requests_per_second": d.RateLimit.RequestsPerSecond,
		"rate_limit.burst":               d.RateLimit.Burst,
		"api.max_symbols_per_request":    d.API.MaxSymbolsPerRequest,
		"api.source_name":                d.API.SourceName,
		"logging.level":                  d.Logging.Level,
		"logging.format":                 d.Logging.Format,
		"logging.output":                 d.Logging.Output,
		"logging.max_size_mb":            d.Logging.MaxSizeMB,
		"logging.max_backups":            d.Logging.MaxBackups,
		"logging.max_age_days":           d.Logging.MaxAgeDays,
		"development.mock_mode":          d.Development.MockMode,
		"development.debug_mode":         d.Development.DebugMode,
	}

	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}
}

// bindEnvVars maps specific environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	// Variables de entorno heredadas (backward compatibility)
	envMappings := map[string][]string{
		"server.port":             {"PORT"},
		"snapshot.backend":        {"SNAPSHOT_BACKEND"},
		"snapshot.redis.addr":     {"REDIS_ADDR"},
		"snapshot.redis.password": {"REDIS_PASSWORD"},
		"snapshot.redis.db":       {"REDIS_DB"},
		"snapshot.s3.bucket":      {"S3_BUCKET"},
		"snapshot.s3.region":      {"AWS_REGION"},
		"snapshot.s3.endpoint":    {"S3_ENDPOINT"},
		"snapshot.s3.access_key":  {"AWS_ACCESS_KEY_ID"},
		"snapshot.s3.secret_key":  {"AWS_SECRET_ACCESS_KEY"},
		"upstream.provider":       {"UPSTREAM_PROVIDER"},
		"upstream.fallback":       {"UPSTREAM_FALLBACK"},
		"upstream.proxy.host":     {"PROXY_HOST", "HTTP_PROXY_HOST"},
		"upstream.proxy.port":     {"PROXY_PORT", "HTTP_PROXY_PORT"},
		"upstream.proxy.username": {"PROXY_USERNAME", "PROXY_USER"},
		"upstream.proxy.password": {"PROXY_PASSWORD", "PROXY_PASS"},
		"logging.level":           {"LOG_LEVEL"},
		"logging.format":          {"LOG_FORMAT"},
		"rate_limit.enabled":      {"RATE_LIMIT_ENABLED"},
	}

	for configKey, envVars := range envMappings {
		// el nombre con prefijo sigue teniendo prioridad
		names := append([]string{"MARKET_DATA_" + strings.ToUpper(strings.ReplaceAll(configKey, ".", "_"))}, envVars...)
		_ = l.v.BindEnv(append([]string{configKey}, names...)...)
	}
}

// overrideWithEnvVars maneja casos especiales de env vars
func (l *Loader) overrideWithEnvVars(config *Config) {
	// CORS_ORIGINS como string separado por comas
	if originsEnv := os.Getenv("CORS_ORIGINS"); originsEnv != "" {
		var origins []string
		for _, origin := range strings.Split(originsEnv, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			config.Server.CORSOrigins = origins
		}
	}

	// Development mode env vars
	if mockMode := os.Getenv("MOCK_MODE"); mockMode == "true" || mockMode == "1" {
		config.Development.MockMode = true
	}
	if debugMode := os.Getenv("DEBUG_MODE"); debugMode == "true" || debugMode == "1" {
		config.Development.DebugMode = true
	}
}

// LoadForEnvironment loads specific configuration for an environment
func (l *Loader) LoadForEnvironment(environment string) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	// Con archivo explícito no hay overlay por entorno
	if environment == "" || l.configFile != "" {
		return config, nil
	}

	l.v.SetConfigName(fmt.Sprintf("config.%s", environment))
	if err := l.v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to merge environment config: %w", err)
		}
		return config, nil
	}

	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merged config: %w", err)
	}
	l.overrideWithEnvVars(config)

	return config, nil
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LoggerFactory facilita la creación de diferentes tipos de loggers
type LoggerFactory struct {
	baseLogger *StructuredLogger
}

// NewLoggerFactory crea una nueva factory de loggers
func NewLoggerFactory(config *LoggerConfig) (*LoggerFactory, error) {
	if config == nil {
		config = DefaultConfig()
	}

	baseLogger, err := NewStructuredLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create base logger: %w", err)
	}

	return &LoggerFactory{
		baseLogger: baseLogger,
	}, nil
}

// GetBaseLogger retorna el logger base
func (f *LoggerFactory) GetBaseLogger() Logger {
	return f.baseLogger
}

// UpdateLogLevel actualiza el nivel de log del logger base
func (f *LoggerFactory) UpdateLogLevel(level LogLevel) {
	f.baseLogger.SetLevel(level)
}

// Sync vacía el logger base
func (f *LoggerFactory) Sync() error {
	return f.baseLogger.Sync()
}

// LoggerSet contiene todos los loggers especializados
type LoggerSet struct {
	Base     Logger
	HTTP     HTTPLogger
	Upstream UpstreamLogger
	Cache    CacheLogger
	Market   MarketLogger
}

// GetLoggerSet retorna un set completo de loggers especializados
func (f *LoggerFactory) GetLoggerSet() *LoggerSet {
	return NewLoggerSet(f.baseLogger)
}

// NewLoggerSet arma los loggers de dominio sobre un logger base cualquiera
func NewLoggerSet(base Logger) *LoggerSet {
	return &LoggerSet{
		Base:     base,
		HTTP:     NewHTTPLogger(base),
		Upstream: NewUpstreamLogger(base),
		Cache:    NewCacheLogger(base),
		Market:   NewMarketLogger(base),
	}
}

// Global factory instance
var (
	globalMu      sync.RWMutex
	globalFactory *LoggerFactory
	globalLoggers *LoggerSet
)

// InitializeGlobalLoggers inicializa los loggers globales
func InitializeGlobalLoggers(config *LoggerConfig) error {
	factory, err := NewLoggerFactory(config)
	if err != nil {
		return fmt.Errorf("failed to initialize global loggers: %w", err)
	}

	globalMu.Lock()
	globalFactory = factory
	globalLoggers = factory.GetLoggerSet()
	globalMu.Unlock()
	return nil
}

// InitializeGlobalLoggersWithDefaults inicializa los loggers globales con configuración por defecto
func InitializeGlobalLoggersWithDefaults(service, version, environment string, level LogLevel) error {
	config := NewConfig(service, version, environment).WithLevel(level)
	return InitializeGlobalLoggers(config)
}

// GetGlobalLoggers retorna todos los loggers globales
func GetGlobalLoggers() *LoggerSet {
	globalMu.RLock()
	loggers := globalLoggers
	globalMu.RUnlock()

	if loggers == nil {
		// Fallback en caso de que no se hayan inicializado los loggers globales
		_ = InitializeGlobalLoggersWithDefaults("market-data-service", "1.0.0", "development", LevelInfo)
		globalMu.RLock()
		loggers = globalLoggers
		globalMu.RUnlock()
	}
	return loggers
}

// GetGlobalLogger retorna el logger base global
func GetGlobalLogger() Logger {
	return GetGlobalLoggers().Base
}

// SetGlobalLogLevel actualiza el nivel de log global
func SetGlobalLogLevel(level LogLevel) {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory != nil {
		globalFactory.UpdateLogLevel(level)
	}
}

// SyncGlobalLoggers vacía los buffers antes de salir
func SyncGlobalLoggers() error {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalFactory != nil {
		return globalFactory.Sync()
	}
	return nil
}

// NewDevelopmentConfig crea una configuración para desarrollo
func NewDevelopmentConfig(service string) *LoggerConfig {
	return NewConfig(service, "dev", "development").
		WithLevel(LevelDebug).
		WithFormat(FormatText).
		WithSource(true)
}

// NewProductionConfig crea una configuración para producción
func NewProductionConfig(service, version string) *LoggerConfig {
	return NewConfig(service, version, "production").
		WithLevel(LevelInfo).
		WithFormat(FormatJSON).
		WithSource(false)
}

// NewTestingConfig crea una configuración para tests que escribe en out
func NewTestingConfig(service string, out io.Writer) *LoggerConfig {
	if out == nil {
		out = os.Stdout
	}
	return NewConfig(service, "test", "testing").
		WithLevel(LevelDebug).
		WithFormat(FormatJSON).
		WithOutput(out)
}

// NopLoggers retorna un set que descarta todo; útil en tests
func NopLoggers() *LoggerSet {
	cfg := NewConfig("nop", "test", "testing").WithLevel(LevelError).WithOutput(io.Discard)
	base, _ := NewStructuredLogger(cfg)
	return NewLoggerSet(base)
}

package logging

import (
	"context"
	"time"
)

// Logger define la interfaz principal para logging estructurado
type Logger interface {
	// Métodos básicos de logging por nivel
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	// Métodos con error incluido
	InfoWithError(ctx context.Context, message string, err error, fields Fields)
	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	// Configuración
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DomainLogger representa loggers especializados por dominio
type DomainLogger interface {
	Logger

	// Identificador del dominio
	Domain() string
}

// HTTPLogger especializado para logs relacionados con HTTP
type HTTPLogger interface {
	DomainLogger

	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64)
	RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64)
	RateLimitExceeded(ctx context.Context, clientIP string, endpoint string)
}

// UpstreamLogger especializado para las llamadas al proveedor de mercado
type UpstreamLogger interface {
	DomainLogger

	RequestStarted(ctx context.Context, provider, operation string, symbols int)
	RequestCompleted(ctx context.Context, provider, operation string, items int, duration float64)
	RequestFailed(ctx context.Context, provider, operation string, err error, duration float64)
	RetryScheduled(ctx context.Context, operation string, attempt uint, delay time.Duration, err error)
}

// CacheLogger especializado para logs relacionados con cache
type CacheLogger interface {
	DomainLogger

	Hit(ctx context.Context, key string)
	Miss(ctx context.Context, key string)
	Stale(ctx context.Context, key string)
	Set(ctx context.Context, key string, ttl float64)
	Purged(ctx context.Context, prefix string, count int)
}

// MarketLogger especializado para la orquestación de quotes e historial
type MarketLogger interface {
	DomainLogger

	BatchRequested(ctx context.Context, kind string, symbols []string)
	BatchServed(ctx context.Context, kind string, served, failed int, source string)
	SymbolFailed(ctx context.Context, kind, symbol string, err error)
	RefreshDropped(ctx context.Context, key string, reason string)
	RefreshFailed(ctx context.Context, key string, err error)
	ValidationFailed(ctx context.Context, input string, reason string)
}

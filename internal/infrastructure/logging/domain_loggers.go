package logging

import (
	"context"
	"time"
)

// BaseDomainLogger implementa funcionalidad común para loggers de dominio
type BaseDomainLogger struct {
	Logger
	domain string
}

// Domain retorna el dominio del logger
func (dl *BaseDomainLogger) Domain() string {
	return dl.domain
}

// logWithDomain agrega el campo de dominio a los logs
func (dl *BaseDomainLogger) logWithDomain(ctx context.Context, level LogLevel, message string, fields Fields) {
	if fields == nil {
		fields = make(Fields)
	}
	fields[FieldDomain] = dl.domain

	switch level {
	case LevelDebug:
		dl.Logger.Debug(ctx, message, fields)
	case LevelInfo:
		dl.Logger.Info(ctx, message, fields)
	case LevelWarn:
		dl.Logger.Warn(ctx, message, fields)
	case LevelError:
		dl.Logger.Error(ctx, message, fields)
	}
}

// Override métodos base para incluir dominio
func (dl *BaseDomainLogger) Debug(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelDebug, message, fields)
}

func (dl *BaseDomainLogger) Info(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelInfo, message, fields)
}

func (dl *BaseDomainLogger) Warn(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelWarn, message, fields)
}

func (dl *BaseDomainLogger) Error(ctx context.Context, message string, fields Fields) {
	dl.logWithDomain(ctx, LevelError, message, fields)
}

func (dl *BaseDomainLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.logWithDomain(ctx, LevelWarn, message, enrichWithError(fields, err))
}

func (dl *BaseDomainLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	dl.logWithDomain(ctx, LevelError, message, enrichWithError(fields, err))
}

// levelForStatus mapea códigos HTTP a niveles de log
func levelForStatus(statusCode int) LogLevel {
	switch {
	case statusCode >= 500:
		return LevelError
	case statusCode >= 400:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// HTTPDomainLogger especializado para logs HTTP
type HTTPDomainLogger struct {
	*BaseDomainLogger
}

// NewHTTPLogger crea un nuevo logger HTTP
func NewHTTPLogger(baseLogger Logger) HTTPLogger {
	return &HTTPDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "http",
		},
	}
}

func (hl *HTTPDomainLogger) RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, 0).
		WithUserAgent(userAgent).
		WithRemoteIP(remoteIP).
		Build()

	hl.Debug(ctx, "HTTP request received", fields)
}

func (hl *HTTPDomainLogger) RequestCompleted(ctx context.Context, method, path string, statusCode int, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	hl.logWithDomain(ctx, levelForStatus(statusCode), "HTTP request completed", fields)
}

func (hl *HTTPDomainLogger) RequestFailed(ctx context.Context, method, path string, statusCode int, err error, duration float64) {
	fields := NewFieldBuilder().
		WithHTTPInfo(method, path, statusCode).
		WithCustomField(FieldDuration, duration).
		Build()

	hl.ErrorWithError(ctx, "HTTP request failed", err, fields)
}

func (hl *HTTPDomainLogger) RateLimitExceeded(ctx context.Context, clientIP string, endpoint string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldClientIP, clientIP).
		WithCustomField(FieldHTTPPath, endpoint).
		WithCustomField(FieldRateLimit, "exceeded").
		Build()

	hl.Warn(ctx, "Rate limit exceeded", fields)
}

// UpstreamDomainLogger especializado para el proveedor de mercado
type UpstreamDomainLogger struct {
	*BaseDomainLogger
}

// NewUpstreamLogger crea un nuevo logger para el proveedor
func NewUpstreamLogger(baseLogger Logger) UpstreamLogger {
	return &UpstreamDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "upstream",
		},
	}
}

func (ul *UpstreamDomainLogger) RequestStarted(ctx context.Context, provider, operation string, symbols int) {
	fields := NewFieldBuilder().
		WithUpstream(provider, operation).
		WithCustomField(FieldSymbolCount, symbols).
		Build()

	ul.Debug(ctx, "Upstream request started", fields)
}

func (ul *UpstreamDomainLogger) RequestCompleted(ctx context.Context, provider, operation string, items int, duration float64) {
	fields := NewFieldBuilder().
		WithUpstream(provider, operation).
		WithCustomField(FieldItems, items).
		WithCustomField(FieldDuration, duration).
		Build()

	ul.Info(ctx, "Upstream request completed", fields)
}

func (ul *UpstreamDomainLogger) RequestFailed(ctx context.Context, provider, operation string, err error, duration float64) {
	fields := NewFieldBuilder().
		WithUpstream(provider, operation).
		WithCustomField(FieldDuration, duration).
		Build()

	ul.WarnWithError(ctx, "Upstream request failed", err, fields)
}

func (ul *UpstreamDomainLogger) RetryScheduled(ctx context.Context, operation string, attempt uint, delay time.Duration, err error) {
	fields := NewFieldBuilder().
		WithCustomField(FieldOperation, operation).
		WithCustomField(FieldAttempt, attempt).
		WithCustomField(FieldRetryDelay, delay.Milliseconds()).
		Build()

	ul.WarnWithError(ctx, "Rate limited by upstream, retrying", err, fields)
}

// CacheDomainLogger especializado para cache
type CacheDomainLogger struct {
	*BaseDomainLogger
}

// NewCacheLogger crea un nuevo logger de cache
func NewCacheLogger(baseLogger Logger) CacheLogger {
	return &CacheDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "cache",
		},
	}
}

func (cl *CacheDomainLogger) Hit(ctx context.Context, key string) {
	cl.Debug(ctx, "Cache hit", NewFieldBuilder().WithCache(key, true, false).Build())
}

func (cl *CacheDomainLogger) Miss(ctx context.Context, key string) {
	cl.Debug(ctx, "Cache miss", NewFieldBuilder().WithCache(key, false, false).Build())
}

func (cl *CacheDomainLogger) Stale(ctx context.Context, key string) {
	cl.Debug(ctx, "Cache stale hit, serving and refreshing", NewFieldBuilder().WithCache(key, true, true).Build())
}

func (cl *CacheDomainLogger) Set(ctx context.Context, key string, ttl float64) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCacheKey, key).
		WithCustomField(FieldCacheTTL, ttl).
		Build()

	cl.Debug(ctx, "Cache set", fields)
}

func (cl *CacheDomainLogger) Purged(ctx context.Context, prefix string, count int) {
	fields := NewFieldBuilder().
		WithCustomField(FieldCachePrefix, prefix).
		WithCustomField(FieldCount, count).
		Build()

	cl.Info(ctx, "Cache entries purged", fields)
}

// MarketDomainLogger especializado para la orquestación de mercado
type MarketDomainLogger struct {
	*BaseDomainLogger
}

// NewMarketLogger crea un nuevo logger de mercado
func NewMarketLogger(baseLogger Logger) MarketLogger {
	return &MarketDomainLogger{
		BaseDomainLogger: &BaseDomainLogger{
			Logger: baseLogger,
			domain: "market",
		},
	}
}

func (ml *MarketDomainLogger) BatchRequested(ctx context.Context, kind string, symbols []string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldKind, kind).
		WithSymbols(symbols).
		Build()

	ml.Info(ctx, "Batch requested", fields)
}

func (ml *MarketDomainLogger) BatchServed(ctx context.Context, kind string, served, failed int, source string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldKind, kind).
		WithCustomField(FieldServed, served).
		WithCustomField(FieldFailed, failed).
		WithCustomField(FieldSource, source).
		Build()

	level := LevelInfo
	if failed > 0 {
		level = LevelWarn
	}
	ml.logWithDomain(ctx, level, "Batch served", fields)
}

func (ml *MarketDomainLogger) SymbolFailed(ctx context.Context, kind, symbol string, err error) {
	fields := NewFieldBuilder().
		WithCustomField(FieldKind, kind).
		WithCustomField(FieldSymbol, symbol).
		Build()

	ml.WarnWithError(ctx, "Symbol fetch failed", err, fields)
}

func (ml *MarketDomainLogger) RefreshDropped(ctx context.Context, key string, reason string) {
	fields := NewFieldBuilder().
		WithCustomField(FieldRefreshKey, key).
		WithCustomField(FieldReason, reason).
		Build()

	ml.Warn(ctx, "Background refresh dropped", fields)
}

func (ml *MarketDomainLogger) RefreshFailed(ctx context.Context, key string, err error) {
	fields := NewFieldBuilder().
		WithCustomField(FieldRefreshKey, key).
		Build()

	ml.WarnWithError(ctx, "Background refresh failed", err, fields)
}

func (ml *MarketDomainLogger) ValidationFailed(ctx context.Context, input string, reason string) {
	fields := NewFieldBuilder().
		WithCustomField("input", input).
		WithCustomField(FieldReason, reason).
		WithCustomField(FieldValidation, "failed").
		Build()

	ml.Warn(ctx, "Input validation failed", fields)
}

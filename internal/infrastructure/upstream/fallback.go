package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"
)

// FallbackProvider consulta al proveedor primario y, ante una falla de
// upstream, repite la llamada en el secundario.
//
// Rate limit y "no data" del primario se propagan tal cual: el primero lo
// maneja el retry del orquestador y el segundo es una respuesta válida.
type FallbackProvider struct {
	primary   interfaces.MarketDataProvider
	secondary interfaces.MarketDataProvider
}

// NewFallbackProvider crea un proveedor con fallback primary → secondary
func NewFallbackProvider(primary, secondary interfaces.MarketDataProvider) *FallbackProvider {
	return &FallbackProvider{primary: primary, secondary: secondary}
}

func (f *FallbackProvider) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// FetchQuotes obtiene quotes del primario con fallback al secundario
func (f *FallbackProvider) FetchQuotes(ctx context.Context, symbols []string) ([]entities.PriceQuote, error) {
	quotes, err := f.primary.FetchQuotes(ctx, symbols)
	if !f.shouldFallback(ctx, err) {
		return quotes, err
	}

	start := time.Now()
	reason := determineFallbackReason(err)
	logging.Info(ctx, "Primary provider failed, falling back", logging.Fields{
		"operation":          "quotes",
		"primary":            f.primary.Name(),
		"secondary":          f.secondary.Name(),
		"fallback_reason":    reason,
		logging.FieldSymbols: symbols,
		logging.FieldError:   err.Error(),
	})

	quotes, fbErr := f.secondary.FetchQuotes(ctx, symbols)
	return quotes, f.finish(ctx, "quotes", reason, start, err, fbErr)
}

// FetchHistory obtiene la serie del primario con fallback al secundario
func (f *FallbackProvider) FetchHistory(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error) {
	points, err := f.primary.FetchHistory(ctx, symbol, window, interval)
	if !f.shouldFallback(ctx, err) {
		return points, err
	}

	start := time.Now()
	reason := determineFallbackReason(err)
	logging.Info(ctx, "Primary provider failed, falling back", logging.Fields{
		"operation":         "history",
		"primary":           f.primary.Name(),
		"secondary":         f.secondary.Name(),
		"fallback_reason":   reason,
		logging.FieldSymbol: symbol,
		logging.FieldError:  err.Error(),
	})

	points, fbErr := f.secondary.FetchHistory(ctx, symbol, window, interval)
	return points, f.finish(ctx, "history", reason, start, err, fbErr)
}

func (f *FallbackProvider) shouldFallback(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	return !entities.IsRateLimited(err) && !entities.IsNotFound(err)
}

// finish registra el resultado del fallback. Si el secundario también falla
// se conserva su clasificación y se adjunta el error del primario.
func (f *FallbackProvider) finish(ctx context.Context, operation, reason string, start time.Time, primaryErr, fallbackErr error) error {
	if fallbackErr == nil {
		metrics.RecordUpstreamFallback(operation, reason, "success")
		logging.Info(ctx, "Fallback provider succeeded", logging.Fields{
			"operation":            operation,
			"secondary":            f.secondary.Name(),
			"fallback_duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	metrics.RecordUpstreamFallback(operation, reason, "error")
	logging.Error(ctx, "Both primary and fallback providers failed", logging.Fields{
		"operation":      operation,
		"primary_error":  primaryErr.Error(),
		"fallback_error": fallbackErr.Error(),
	})

	var domainErr *entities.Error
	if errors.As(fallbackErr, &domainErr) && domainErr.Code != entities.ErrUpstream.Code {
		return fallbackErr
	}
	return entities.WrapCause(entities.ErrUpstream,
		fmt.Errorf("%s: %v; %s: %w", f.primary.Name(), primaryErr, f.secondary.Name(), fallbackErr))
}

// determineFallbackReason clasifica la falla del primario para las métricas
func determineFallbackReason(err error) string {
	if err == nil {
		return "unknown"
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "timeout"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "connection"), strings.Contains(errStr, "dial"):
		return "connection_error"
	case strings.Contains(errStr, "status"):
		return "bad_status"
	case strings.Contains(errStr, "decode"), strings.Contains(errStr, "unmarshal"):
		return "bad_payload"
	}
	return "unknown_error"
}

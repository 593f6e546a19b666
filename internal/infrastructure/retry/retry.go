package retry

import (
	"context"
	"math/rand/v2"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"

	retrygo "github.com/avast/retry-go/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxJitter   = 500 * time.Millisecond

	// maxShift acota 2^n para que BaseDelay * 2^n no desborde
	maxShift = 16
)

// Timer abstrae la espera entre intentos; retry-go usa time.After por defecto
type Timer = retrygo.Timer

// Policy describe cuántas veces y con qué espera se reintenta una operación.
// Es un valor: cada llamada a Do lleva su propio contador de intentos.
type Policy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	// MaxJitter 0 usa DefaultMaxJitter; negativo desactiva el jitter
	MaxJitter time.Duration
	// Operation etiqueta logs y métricas (fetch_quotes, fetch_history, ...)
	Operation string
	Timer     Timer
}

// PolicyFromConfig construye la política a partir de la configuración del servicio
func PolicyFromConfig(cfg config.RetryConfig, operation string) Policy {
	return Policy{
		MaxAttempts: uint(max(cfg.MaxAttempts, 0)),
		BaseDelay:   cfg.BaseDelay,
		MaxJitter:   cfg.MaxJitter,
		Operation:   operation,
	}
}

// WithOperation retorna una copia de la política con otra etiqueta
func (p Policy) WithOperation(operation string) Policy {
	p.Operation = operation
	return p
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxJitter == 0 {
		p.MaxJitter = DefaultMaxJitter
	}
	if p.Operation == "" {
		p.Operation = "upstream"
	}
	return p
}

// Backoff retorna la espera previa al reintento número retry (0 = primer reintento):
// BaseDelay * 2^retry más un jitter uniforme en [0, MaxJitter).
func (p Policy) Backoff(retry uint) time.Duration {
	p = p.normalized()

	shift := min(retry, maxShift)
	delay := p.BaseDelay << shift
	if p.MaxJitter > 0 {
		delay += rand.N(p.MaxJitter)
	}
	return delay
}

// Do ejecuta op y la reintenta solo mientras falle con entities.ErrRateLimited
// y queden intentos. Cualquier otro error, o el último RateLimited, se
// propaga sin envolver.
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalized()

	// contador explícito de reintentos de esta llamada
	var retries uint

	opts := []retrygo.Option{
		retrygo.Attempts(policy.MaxAttempts),
		retrygo.RetryIf(entities.IsRateLimited),
		retrygo.LastErrorOnly(true),
		retrygo.Context(ctx),
		retrygo.DelayType(func(_ uint, err error, _ *retrygo.Config) time.Duration {
			delay := policy.Backoff(retries)
			retries++

			metrics.RecordUpstreamRetry(policy.Operation, retries, delay.Seconds())
			logging.Upstream().RetryScheduled(ctx, policy.Operation, retries, delay, err)
			return delay
		}),
		retrygo.OnRetry(func(n uint, err error) {
			logging.Debug(ctx, "Upstream attempt failed", logging.Fields{
				logging.FieldOperation: policy.Operation,
				logging.FieldAttempt:   n + 1,
				"max_attempts":         policy.MaxAttempts,
				"error":                err.Error(),
			})
		}),
	}
	if policy.Timer != nil {
		opts = append(opts, retrygo.WithTimer(policy.Timer))
	}

	return retrygo.DoWithData(func() (T, error) {
		return op(ctx)
	}, opts...)
}

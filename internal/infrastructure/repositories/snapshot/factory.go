package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"

	"github.com/avast/retry-go/v4"
)

// Backend identifica la implementación de SnapshotStore
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
	BackendS3     Backend = "s3"
	BackendNone   Backend = "none"

	DefaultConnectRetries = 5
	DefaultConnectDelay   = 5 * time.Second
	pingTimeout           = 5 * time.Second
)

// Factory provides methods to create snapshot store instances
type Factory struct {
	// los tests reemplazan los constructores para no abrir conexiones reales
	newRedis func(config.RedisConfig) interfaces.SnapshotStore
	newS3    func(config.S3Config) interfaces.SnapshotStore
	timer    retry.Timer
}

// NewFactory creates a new snapshot store factory
func NewFactory() *Factory {
	return &Factory{
		newRedis: func(cfg config.RedisConfig) interfaces.SnapshotStore { return NewRedisStore(cfg) },
		newS3:    func(cfg config.S3Config) interfaces.SnapshotStore { return NewS3Store(cfg) },
	}
}

// CreateStore crea el store configurado, verifica la conexión y lo envuelve con métricas
func (f *Factory) CreateStore(ctx context.Context, cfg config.SnapshotConfig) (interfaces.SnapshotStore, error) {
	backend := Backend(strings.ToLower(cfg.Backend))
	if backend == "" {
		backend = BackendMemory
	}

	var store interfaces.SnapshotStore
	switch backend {
	case BackendMemory:
		store = NewMemoryStore()
	case BackendNone:
		store = NoopStore{}
	case BackendRedis:
		logging.Info(ctx, "Creating Redis snapshot store", logging.Fields{
			"backend":  "redis",
			"addr":     cfg.Redis.Addr,
			"database": cfg.Redis.DB,
		})
		store = f.newRedis(cfg.Redis)
	case BackendS3:
		logging.Info(ctx, "Creating S3 snapshot store", logging.Fields{
			"backend":  "s3",
			"bucket":   cfg.S3.Bucket,
			"region":   cfg.S3.Region,
			"endpoint": cfg.S3.Endpoint,
		})
		store = f.newS3(cfg.S3)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}

	if err := f.connect(ctx, store, backend, cfg); err != nil {
		_ = store.Close()
		return nil, err
	}

	logging.Info(ctx, "Snapshot store ready", logging.Fields{"backend": string(backend)})
	return NewInstrumentedStore(store, string(backend)), nil
}

// connect hace ping con reintentos fijos hasta que el backend responde
func (f *Factory) connect(ctx context.Context, store interfaces.SnapshotStore, backend Backend, cfg config.SnapshotConfig) error {
	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = DefaultConnectRetries
	}
	delay := cfg.ConnectDelay
	if delay <= 0 {
		delay = DefaultConnectDelay
	}

	opts := []retry.Option{
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logging.Warn(ctx, "Snapshot store not reachable, retrying", logging.Fields{
				"backend":      string(backend),
				"attempt":      n + 1,
				"max_attempts": attempts,
				"error":        err.Error(),
			})
		}),
	}
	if f.timer != nil {
		opts = append(opts, retry.WithTimer(f.timer))
	}

	err := retry.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return store.Ping(pingCtx)
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to %s snapshot store after %d attempts: %w", backend, attempts, err)
	}
	return nil
}

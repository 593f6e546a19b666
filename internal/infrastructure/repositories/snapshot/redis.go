package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "market-data:"

// redisClient es el subconjunto de *redis.Client que usa el store
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore guarda cada serie como un array JSON en {prefix}history:{SYM}
// y mantiene el set {prefix}symbols para poder borrar todo.
type RedisStore struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

var _ interfaces.SnapshotStore = (*RedisStore)(nil)

// NewRedisStore crea el store con un cliente nuevo
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(rdb, cfg.Prefix, cfg.TTL)
}

// NewRedisStoreWithClient creates a store with an existing client
func NewRedisStoreWithClient(client redisClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) historyKey(symbol string) string {
	return r.prefix + "history:" + symbol
}

func (r *RedisStore) symbolsKey() string {
	return r.prefix + "symbols"
}

// ReplaceHistory reemplaza la serie guardada del símbolo
func (r *RedisStore) ReplaceHistory(ctx context.Context, symbol string, points []entities.HistoryPoint) error {
	if symbol == "" {
		return ErrInvalidSymbol
	}

	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", symbol, err)
	}

	if err := r.client.Set(ctx, r.historyKey(symbol), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot for %s: %w", symbol, err)
	}
	if err := r.client.SAdd(ctx, r.symbolsKey(), symbol).Err(); err != nil {
		return fmt.Errorf("failed to index snapshot for %s: %w", symbol, err)
	}
	return nil
}

// LoadHistory retorna entities.ErrNotFound si no hay snapshot
func (r *RedisStore) LoadHistory(ctx context.Context, symbol string) ([]entities.HistoryPoint, error) {
	val, err := r.client.Get(ctx, r.historyKey(symbol)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, entities.Wrap(entities.ErrNotFound, "no snapshot for "+symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", symbol, err)
	}

	var points []entities.HistoryPoint
	if err := json.Unmarshal([]byte(val), &points); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", symbol, err)
	}
	return points, nil
}

// ClearAll borra todas las series indexadas y retorna cuántos puntos había
func (r *RedisStore) ClearAll(ctx context.Context) (int64, error) {
	symbols, err := r.client.SMembers(ctx, r.symbolsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list snapshots: %w", err)
	}

	var deleted int64
	keys := make([]string, 0, len(symbols)+1)
	for _, symbol := range symbols {
		// una serie que expiró por TTL ya no cuenta
		if points, err := r.LoadHistory(ctx, symbol); err == nil {
			deleted += int64(len(points))
		}
		keys = append(keys, r.historyKey(symbol))
	}
	keys = append(keys, r.symbolsKey())

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return deleted, nil
}

// Ping checks if Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

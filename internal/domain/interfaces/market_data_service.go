package interfaces

import (
	"context"
	"market-data-service/internal/domain/entities"
	"time"
)

// CacheState clasifica una entrada al momento de leerla
type CacheState int

const (
	CacheMiss CacheState = iota
	CacheStale
	CacheFresh
)

func (s CacheState) String() string {
	switch s {
	case CacheFresh:
		return "fresh"
	case CacheStale:
		return "stale"
	default:
		return "miss"
	}
}

// StaleCache es un cache acotado con expiración por entrada y lectura "allow stale"
type StaleCache[V any] interface {
	// Get retorna el valor solo si existe y no expiró
	Get(key string) (V, bool)
	// GetAllowStale retorna el valor aunque haya expirado, sin purgarlo
	GetAllowStale(key string) (V, bool)
	// IsFresh indica si existe y no expiró
	IsFresh(key string) bool
	// Set inserta o reemplaza; ttl <= 0 usa el TTL por defecto
	Set(key string, value V, ttl time.Duration)
	// Lookup combina GetAllowStale e IsFresh en una sola operación atómica
	Lookup(key string) (V, CacheState)
	Delete(key string)
	// DeletePrefix elimina todas las claves con el prefijo y retorna cuántas
	DeletePrefix(prefix string) int
	Len() int
	Purge()
}

// MarketDataService define los casos de uso del orquestador de batches
type MarketDataService interface {
	// GetQuotes resuelve precios actuales; nunca falla a nivel de request,
	// los errores por símbolo viajan en el BatchResult
	GetQuotes(ctx context.Context, symbols []string) *entities.BatchResult[entities.PriceQuote]

	// GetHistory resuelve series históricas, un fetch secuencial por cada miss
	GetHistory(ctx context.Context, symbols []string, window entities.Window, interval entities.Interval) *entities.BatchResult[entities.HistoryPoint]

	// InvalidateHistory elimina del cache las series de todos los símbolos
	InvalidateHistory() int

	Close()
}

package interfaces

import (
	"context"
	"market-data-service/internal/domain/entities"
)

// SnapshotStore persiste la última serie histórica descargada por símbolo.
// Es best-effort: no participa en las decisiones de cache.
type SnapshotStore interface {
	// ReplaceHistory reemplaza todos los puntos guardados del símbolo
	ReplaceHistory(ctx context.Context, symbol string, points []entities.HistoryPoint) error

	// LoadHistory retorna entities.ErrNotFound si no hay snapshot
	LoadHistory(ctx context.Context, symbol string) ([]entities.HistoryPoint, error)

	// ClearAll elimina todos los snapshots y retorna cuántos puntos se borraron
	ClearAll(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

package snapshot

import (
	"context"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/metrics"
)

// InstrumentedStore wraps any SnapshotStore implementation with metrics
type InstrumentedStore struct {
	store   interfaces.SnapshotStore
	backend string
}

var _ interfaces.SnapshotStore = (*InstrumentedStore)(nil)

// NewInstrumentedStore creates a new instrumented store wrapper
func NewInstrumentedStore(store interfaces.SnapshotStore, backend string) *InstrumentedStore {
	return &InstrumentedStore{
		store:   store,
		backend: backend,
	}
}

// Backend retorna el nombre del backend envuelto
func (is *InstrumentedStore) Backend() string {
	return is.backend
}

func (is *InstrumentedStore) ReplaceHistory(ctx context.Context, symbol string, points []entities.HistoryPoint) error {
	err := is.store.ReplaceHistory(ctx, symbol, points)
	metrics.RecordSnapshotOperation(is.backend, "replace", err)
	return err
}

func (is *InstrumentedStore) LoadHistory(ctx context.Context, symbol string) ([]entities.HistoryPoint, error) {
	points, err := is.store.LoadHistory(ctx, symbol)
	// un snapshot ausente no es una falla del backend
	if entities.IsNotFound(err) {
		metrics.RecordSnapshotOperation(is.backend, "load", nil)
	} else {
		metrics.RecordSnapshotOperation(is.backend, "load", err)
	}
	return points, err
}

func (is *InstrumentedStore) ClearAll(ctx context.Context) (int64, error) {
	n, err := is.store.ClearAll(ctx)
	metrics.RecordSnapshotOperation(is.backend, "clear_all", err)
	return n, err
}

func (is *InstrumentedStore) Ping(ctx context.Context) error {
	err := is.store.Ping(ctx)
	metrics.RecordSnapshotOperation(is.backend, "ping", err)
	return err
}

func (is *InstrumentedStore) Close() error {
	return is.store.Close()
}

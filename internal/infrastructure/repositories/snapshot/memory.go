package snapshot

import (
	"context"
	"sync"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
)

// MemoryStore guarda los snapshots en un mapa; se pierden al reiniciar
type MemoryStore struct {
	mu      sync.RWMutex
	history map[string][]entities.HistoryPoint
}

var _ interfaces.SnapshotStore = (*MemoryStore)(nil)

// NewMemoryStore crea un store en memoria vacío
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history: make(map[string][]entities.HistoryPoint),
	}
}

func (m *MemoryStore) ReplaceHistory(_ context.Context, symbol string, points []entities.HistoryPoint) error {
	if symbol == "" {
		return ErrInvalidSymbol
	}

	cp := make([]entities.HistoryPoint, len(points))
	copy(cp, points)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[symbol] = cp
	return nil
}

func (m *MemoryStore) LoadHistory(_ context.Context, symbol string) ([]entities.HistoryPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	points, ok := m.history[symbol]
	if !ok {
		return nil, entities.Wrap(entities.ErrNotFound, "no snapshot for "+symbol)
	}

	cp := make([]entities.HistoryPoint, len(points))
	copy(cp, points)
	return cp, nil
}

func (m *MemoryStore) ClearAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, points := range m.history {
		deleted += int64(len(points))
	}
	m.history = make(map[string][]entities.HistoryPoint)
	return deleted, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// NoopStore descarta todo; se usa con snapshot.backend=none
type NoopStore struct{}

var _ interfaces.SnapshotStore = NoopStore{}

func (NoopStore) ReplaceHistory(context.Context, string, []entities.HistoryPoint) error {
	return nil
}

func (NoopStore) LoadHistory(_ context.Context, symbol string) ([]entities.HistoryPoint, error) {
	return nil, entities.Wrap(entities.ErrNotFound, "snapshots are disabled")
}

func (NoopStore) ClearAll(context.Context) (int64, error) { return 0, nil }
func (NoopStore) Ping(context.Context) error              { return nil }
func (NoopStore) Close() error                            { return nil }

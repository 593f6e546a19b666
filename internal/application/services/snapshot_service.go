package services

import (
	"context"
	"fmt"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/logging"
)

// SnapshotService persiste la última serie diaria de cada símbolo
type SnapshotService struct {
	market interfaces.MarketDataService
	store  interfaces.SnapshotStore
	now    func() time.Time
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(market interfaces.MarketDataService, store interfaces.SnapshotStore) *SnapshotService {
	return &SnapshotService{
		market: market,
		store:  store,
		now:    time.Now,
	}
}

// FetchAndStore trae los últimos tres años diarios del símbolo y reemplaza su
// snapshot. El resultado siempre se retorna; si guardarlo falla, el error
// vuelve como segundo valor para informarlo como advertencia.
func (s *SnapshotService) FetchAndStore(ctx context.Context, symbol string) (*entities.BatchResult[entities.HistoryPoint], error) {
	symbol = entities.NormalizeSymbol(symbol)
	window := entities.DefaultHistoryWindow(s.now())

	result := s.market.GetHistory(ctx, []string{symbol}, window, entities.IntervalDay)
	if len(result.Data) == 0 {
		// no pisamos un snapshot existente con una serie vacía
		return result, nil
	}

	if err := s.store.ReplaceHistory(ctx, symbol, result.Data); err != nil {
		logging.WarnWithError(ctx, "Failed to persist history snapshot", err, logging.Fields{
			logging.FieldSymbol: symbol,
			logging.FieldItems:  len(result.Data),
		})
		return result, fmt.Errorf("failed to persist snapshot for %s: %w", symbol, err)
	}

	logging.Info(ctx, "History snapshot stored", logging.Fields{
		logging.FieldSymbol: symbol,
		logging.FieldItems:  len(result.Data),
	})
	return result, nil
}

// Stored retorna el snapshot guardado; entities.ErrNotFound si no existe
func (s *SnapshotService) Stored(ctx context.Context, symbol string) ([]entities.HistoryPoint, error) {
	return s.store.LoadHistory(ctx, entities.NormalizeSymbol(symbol))
}

// ClearAll borra todos los snapshots y las series cacheadas en memoria
func (s *SnapshotService) ClearAll(ctx context.Context) (int64, error) {
	deleted, err := s.store.ClearAll(ctx)
	if err != nil {
		logging.ErrorWithError(ctx, "Failed to clear history snapshots", err, nil)
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}

	purged := s.market.InvalidateHistory()
	logging.Info(ctx, "All stock data cleared", logging.Fields{
		"deleted_points": deleted,
		"purged_entries": purged,
	})
	return deleted, nil
}

// Ready verifica que el store responda
func (s *SnapshotService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

package handlers

import (
	"context"
	"net/http"

	"market-data-service/internal/application/dto"
	"market-data-service/internal/domain/entities"
	"market-data-service/internal/infrastructure/logging"

	"github.com/gorilla/mux"
)

// SnapshotUseCases es lo que el handler necesita de services.SnapshotService
type SnapshotUseCases interface {
	FetchAndStore(ctx context.Context, symbol string) (*entities.BatchResult[entities.HistoryPoint], error)
	Stored(ctx context.Context, symbol string) ([]entities.HistoryPoint, error)
	ClearAll(ctx context.Context) (int64, error)
}

// ClearAllMessage es el mensaje de DELETE /api/stocks/clear-all
const ClearAllMessage = "All stock data cleared!"

// StocksHandler expone las rutas de snapshot por símbolo
type StocksHandler struct {
	snapshots SnapshotUseCases
	mapper    *dto.MarketMapper
}

// NewStocksHandler creates a new instance of the stocks handler
func NewStocksHandler(snapshots SnapshotUseCases) *StocksHandler {
	return &StocksHandler{
		snapshots: snapshots,
		mapper:    dto.NewMarketMapper(),
	}
}

// FetchYahoo godoc
// @Summary Fetch and persist three years of daily history
// @Description Resolves the daily high/low series of the last three years through the cache and stores it as the symbol snapshot. A failed save is reported in warning, not as an error.
// @Tags stocks
// @Produce json
// @Param symbol path string true "Ticker symbol" example(AAPL)
// @Success 200 {object} dto.HistoryResponse "History batch for the symbol"
// @Failure 400 {object} dto.ErrorResponse "Invalid symbol"
// @Router /api/yahoo/{symbol} [get]
func (h *StocksHandler) FetchYahoo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := mux.Vars(r)["symbol"]
	symbol, err := dto.ValidateSymbol(raw)
	if err != nil {
		writeValidationError(ctx, w, raw, err)
		return
	}

	result, err := h.snapshots.FetchAndStore(ctx, symbol)
	response := h.mapper.ToHistoryResponse(result)
	if err != nil {
		response.Warning = err.Error()
	}

	writeJSONResponse(ctx, w, http.StatusOK, response)
}

// GetStored godoc
// @Summary Read the stored history snapshot
// @Tags stocks
// @Produce json
// @Param symbol path string true "Ticker symbol" example(AAPL)
// @Success 200 {object} dto.StoredHistoryResponse "Stored series"
// @Failure 400 {object} dto.ErrorResponse "Invalid symbol"
// @Failure 404 {object} dto.ErrorResponse "No snapshot for the symbol"
// @Failure 500 {object} dto.ErrorResponse "Snapshot store failure"
// @Router /api/stocks/{symbol} [get]
func (h *StocksHandler) GetStored(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := mux.Vars(r)["symbol"]
	symbol, err := dto.ValidateSymbol(raw)
	if err != nil {
		writeValidationError(ctx, w, raw, err)
		return
	}

	points, err := h.snapshots.Stored(ctx, symbol)
	switch {
	case entities.IsNotFound(err):
		writeErrorResponse(ctx, w, http.StatusNotFound, errNotFound, "No data found in DB", entities.ErrNotFound.Code)
		return
	case err != nil:
		logging.ErrorWithError(ctx, "Failed to read history snapshot", err, logging.Fields{
			logging.FieldSymbol: symbol,
		})
		writeErrorResponse(ctx, w, http.StatusInternalServerError, errSnapshot, err.Error(), "")
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToStoredHistoryResponse(points))
}

// ClearAll godoc
// @Summary Delete every stored snapshot
// @Description Clears the snapshot store and purges cached history series.
// @Tags stocks
// @Produce json
// @Success 200 {object} dto.ClearAllResponse "Snapshots cleared"
// @Failure 500 {object} dto.ErrorResponse "Snapshot store failure"
// @Router /api/stocks/clear-all [delete]
func (h *StocksHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deleted, err := h.snapshots.ClearAll(ctx)
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusInternalServerError, errSnapshot, err.Error(), "")
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, &dto.ClearAllResponse{
		Message:      ClearAllMessage,
		DeletedCount: deleted,
	})
}

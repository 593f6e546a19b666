package dto

import (
	"market-data-service/internal/domain/entities"
)

// MarketMapper maneja la conversión entre entidades del dominio y DTOs
type MarketMapper struct{}

// NewMarketMapper crea una nueva instancia del mapper
func NewMarketMapper() *MarketMapper {
	return &MarketMapper{}
}

// ToQuotesResponse convierte un batch de quotes a DTO de respuesta.
// El orden de data y errors se conserva tal como lo produjo el orquestador.
func (m *MarketMapper) ToQuotesResponse(result *entities.BatchResult[entities.PriceQuote]) *QuotesResponse {
	data := make([]QuoteData, len(result.Data))
	for i, q := range result.Data {
		data[i] = QuoteData{
			Symbol:        q.Symbol,
			Price:         q.Price,
			Change:        q.Change,
			ChangePercent: q.ChangePercent,
			AsOf:          q.AsOf,
		}
	}

	return &QuotesResponse{
		Source: result.Source,
		Data:   data,
		Errors: m.toSymbolErrors(result.Errors),
	}
}

// ToHistoryResponse convierte un batch histórico a DTO de respuesta
func (m *MarketMapper) ToHistoryResponse(result *entities.BatchResult[entities.HistoryPoint]) *HistoryResponse {
	return &HistoryResponse{
		Source: result.Source,
		Data:   m.ToHistoryData(result.Data),
		Errors: m.toSymbolErrors(result.Errors),
	}
}

// ToStoredHistoryResponse arma la respuesta de lectura de snapshot
func (m *MarketMapper) ToStoredHistoryResponse(points []entities.HistoryPoint) *StoredHistoryResponse {
	return &StoredHistoryResponse{
		Source: "Snapshot",
		Data:   m.ToHistoryData(points),
	}
}

// ToHistoryData convierte puntos del dominio a DTO
func (m *MarketMapper) ToHistoryData(points []entities.HistoryPoint) []HistoryData {
	data := make([]HistoryData, len(points))
	for i, p := range points {
		data[i] = HistoryData{
			Symbol: p.Symbol,
			Date:   p.Date,
			High:   p.High,
			Low:    p.Low,
		}
	}
	return data
}

func (m *MarketMapper) toSymbolErrors(errs []entities.SymbolError) []SymbolError {
	out := make([]SymbolError, len(errs))
	for i, e := range errs {
		out[i] = SymbolError{Symbol: e.Symbol, Error: e.Error}
	}
	return out
}

package interfaces

import (
	"context"
	"market-data-service/internal/domain/entities"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_provider.go -source=provider.go MarketDataProvider

// MarketDataProvider es la frontera con el proveedor externo de datos de mercado.
//
// FetchQuotes es batch: los símbolos sin quote se omiten del resultado sin
// error; es el orquestador quien detecta los faltantes. FetchHistory es de un
// solo símbolo porque el proveedor no ofrece historial batch.
//
// Los errores se clasifican como entities.ErrRateLimited (throttling) o
// entities.ErrUpstream / entities.ErrNotFound para todo lo demás.
type MarketDataProvider interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]entities.PriceQuote, error)
	FetchHistory(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error)
	Name() string
}

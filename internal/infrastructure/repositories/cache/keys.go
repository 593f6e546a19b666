package cache

import (
	"fmt"

	"market-data-service/internal/domain/entities"
)

// Prefijos de clave por tipo de dato
const (
	QuotePrefix   = "quote:"
	HistoryPrefix = "history:"
)

// QuoteKey retorna la clave quote:<SYM>
func QuoteKey(symbol string) string {
	return QuotePrefix + symbol
}

// HistoryKey retorna la clave history:<SYM>:<start>:<end>:<interval>.
// La ventana se resuelve por día, así que dos pedidos del mismo día comparten entrada.
func HistoryKey(symbol string, window entities.Window, interval entities.Interval) string {
	return fmt.Sprintf("%s%s:%s:%s", HistoryPrefix, symbol, window.Key(), interval)
}

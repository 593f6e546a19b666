package dto

import (
	"fmt"
	"strings"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/pkg/utils"
)

// DefaultMaxSymbols limita la cantidad de símbolos por request cuando no se configura
const DefaultMaxSymbols = 50

// QuotesRequest representa la request de precios actuales
type QuotesRequest struct {
	// Symbols es la lista de tickers (ej: ["AAPL","MSFT"])
	Symbols []string `json:"symbols" example:"AAPL,MSFT"`
}

// HistoryRequest representa la request de series históricas
type HistoryRequest struct {
	Symbols  []string `json:"symbols" example:"AAPL,MSFT"`
	Start    string   `json:"start,omitempty" example:"2024-01-01"`
	End      string   `json:"end,omitempty" example:"2024-12-31"`
	Interval string   `json:"interval,omitempty" example:"1d" enums:"1h,1d,1wk,1mo"`
}

// HistoryQuery es una HistoryRequest ya validada
type HistoryQuery struct {
	Symbols  []string
	Window   entities.Window
	Interval entities.Interval
}

// SplitSymbols separa un parámetro "AAPL, msft" en sus elementos
func SplitSymbols(param string) []string {
	if strings.TrimSpace(param) == "" {
		return nil
	}
	return strings.Split(param, ",")
}

// NewQuotesRequest crea una request desde el query parameter symbols
func NewQuotesRequest(symbolsParam string) *QuotesRequest {
	return &QuotesRequest{Symbols: SplitSymbols(symbolsParam)}
}

// Validate normaliza los símbolos en el lugar y verifica cantidad y formato
func (r *QuotesRequest) Validate(maxSymbols int) error {
	symbols, err := ValidateSymbols(r.Symbols, maxSymbols)
	if err != nil {
		return err
	}
	r.Symbols = symbols
	return nil
}

// ValidateSymbols normaliza la lista y rechaza vacíos, excesos o formatos inválidos
func ValidateSymbols(raw []string, maxSymbols int) ([]string, error) {
	if maxSymbols <= 0 {
		maxSymbols = DefaultMaxSymbols
	}

	symbols := entities.NormalizeSymbols(raw)
	if len(symbols) == 0 {
		return nil, entities.Wrap(entities.ErrValidation, "at least one symbol is required")
	}
	if len(symbols) > maxSymbols {
		return nil, entities.Wrap(entities.ErrValidation,
			fmt.Sprintf("too many symbols: %d (max %d)", len(symbols), maxSymbols))
	}

	for _, symbol := range symbols {
		if err := entities.ValidateSymbol(symbol); err != nil {
			return nil, err
		}
	}
	return symbols, nil
}

// ValidateSymbol normaliza y valida un único símbolo (rutas /{symbol})
func ValidateSymbol(raw string) (string, error) {
	symbol := entities.NormalizeSymbol(raw)
	if err := entities.ValidateSymbol(symbol); err != nil {
		return "", err
	}
	return symbol, nil
}

// Validate convierte la request en una consulta lista para el orquestador.
// Sin fechas se usan los últimos tres años; con una sola, la otra se completa.
func (r *HistoryRequest) Validate(maxSymbols int, now time.Time) (*HistoryQuery, error) {
	symbols, err := ValidateSymbols(r.Symbols, maxSymbols)
	if err != nil {
		return nil, err
	}

	interval, err := entities.ParseInterval(strings.TrimSpace(r.Interval))
	if err != nil {
		return nil, err
	}

	window := entities.DefaultHistoryWindow(now)
	if r.End != "" {
		end, err := parseDate("end", r.End)
		if err != nil {
			return nil, err
		}
		window.Start = utils.YearsAgo(end, entities.DefaultHistoryYears)
		window.End = end
		if isDateOnly(r.End) {
			// una fecha sola incluye el día completo
			window.End = utils.EndOfDay(end)
		}
	}
	if r.Start != "" {
		start, err := parseDate("start", r.Start)
		if err != nil {
			return nil, err
		}
		window.Start = start
	}

	window, err = entities.NewWindow(window.Start, window.End)
	if err != nil {
		return nil, err
	}

	return &HistoryQuery{
		Symbols:  symbols,
		Window:   window,
		Interval: interval,
	}, nil
}

func isDateOnly(raw string) bool {
	return len(strings.TrimSpace(raw)) == len(utils.DateLayout)
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := utils.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, entities.Wrap(entities.ErrValidation,
			fmt.Sprintf("invalid %s date %q (expected %s)", field, raw, utils.DateLayout))
	}
	return t, nil
}

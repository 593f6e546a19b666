package entities

import (
	"fmt"
	"time"

	"market-data-service/pkg/utils"
)

// HistoryPoint es un registro diario (o del intervalo pedido) de máximos y mínimos
type HistoryPoint struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
}

// Interval es la granularidad de una serie histórica
type Interval string

const (
	IntervalHour  Interval = "1h"
	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1wk"
	IntervalMonth Interval = "1mo"
)

// DefaultHistoryYears es la ventana que usa /api/yahoo/{symbol}
const DefaultHistoryYears = 3

var validIntervals = map[Interval]bool{
	IntervalHour:  true,
	IntervalDay:   true,
	IntervalWeek:  true,
	IntervalMonth: true,
}

// ParseInterval convierte un string a Interval; vacío significa diario
func ParseInterval(raw string) (Interval, error) {
	if raw == "" {
		return IntervalDay, nil
	}
	i := Interval(raw)
	if !validIntervals[i] {
		return "", Wrap(ErrValidation, fmt.Sprintf("unsupported interval: %s", raw))
	}
	return i, nil
}

// Window es el rango [Start, End] de una consulta histórica
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow valida y construye una ventana
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, Wrap(ErrValidation, "window start and end are required")
	}
	if !start.Before(end) {
		return Window{}, Wrap(ErrValidation, "window start must be before end")
	}
	return Window{Start: start, End: end}, nil
}

// DefaultHistoryWindow retorna los últimos tres años hasta now
func DefaultHistoryWindow(now time.Time) Window {
	return Window{
		Start: utils.YearsAgo(now, DefaultHistoryYears),
		End:   now,
	}
}

// Key identifica la ventana con resolución de día, para que ventanas
// pedidas en el mismo día compartan entrada de cache.
func (w Window) Key() string {
	return fmt.Sprintf("%s:%s", utils.GetDayKey(w.Start), utils.GetDayKey(w.End))
}

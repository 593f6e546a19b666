package entities

import "time"

// PriceQuote es un snapshot del precio actual de un símbolo.
// Una vez creado no se modifica; un quote más nuevo lo reemplaza.
type PriceQuote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	AsOf          time.Time `json:"asOfTime"`
}

func NewPriceQuote(symbol string, price, change, changePercent float64, asOf time.Time) PriceQuote {
	return PriceQuote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		AsOf:          asOf,
	}
}

// Age retorna la antigüedad del quote respecto a now
func (q PriceQuote) Age(now time.Time) time.Duration {
	if q.AsOf.IsZero() {
		return 0
	}
	return now.Sub(q.AsOf)
}

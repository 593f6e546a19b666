package yahoo

import (
	"strings"

	"market-data-service/internal/domain/entities"
	"market-data-service/pkg/utils"
)

// quoteResponse es la respuesta de /v7/finance/quote
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol                     string   `json:"symbol"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64  `json:"regularMarketChange"`
	RegularMarketChangePercent float64  `json:"regularMarketChangePercent"`
	RegularMarketTime          int64    `json:"regularMarketTime"`
}

// chartResponse es la respuesta de /v8/finance/chart/{symbol}
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol string `json:"symbol"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			High []*float64 `json:"high"`
			Low  []*float64 `json:"low"`
		} `json:"quote"`
	} `json:"indicators"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// IsNotFound indica que Yahoo reporta el símbolo como inexistente
func (e *apiError) IsNotFound() bool {
	return e != nil && strings.EqualFold(e.Code, "Not Found")
}

// ToPriceQuote convierte un resultado; ok=false si no trae precio
func (q quoteResult) ToPriceQuote(symbol string) (entities.PriceQuote, bool) {
	if q.RegularMarketPrice == nil {
		return entities.PriceQuote{}, false
	}
	return entities.NewPriceQuote(
		symbol,
		*q.RegularMarketPrice,
		q.RegularMarketChange,
		q.RegularMarketChangePercent,
		utils.UnixSeconds(q.RegularMarketTime),
	), true
}

// ToHistoryPoints arma la serie descartando puntos sin high/low
func (r chartResult) ToHistoryPoints(symbol string) []entities.HistoryPoint {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	points := make([]entities.HistoryPoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.High) || i >= len(q.Low) {
			break
		}
		if q.High[i] == nil || q.Low[i] == nil {
			continue
		}
		points = append(points, entities.HistoryPoint{
			Symbol: symbol,
			Date:   utils.UnixSeconds(ts),
			High:   *q.High[i],
			Low:    *q.Low[i],
		})
	}
	return points
}

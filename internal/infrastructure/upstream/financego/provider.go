package financego

import (
	"context"
	"strings"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"
	"market-data-service/internal/infrastructure/upstream/yahoo"
	"market-data-service/pkg/utils"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
)

const ProviderName = "financego"

// bar es la parte de finance.ChartBar que usamos
type bar struct {
	timestamp int64
	high      float64
	low       float64
}

type quoteSource func(symbols []string) ([]*finance.Quote, error)
type chartSource func(params *chart.Params) ([]bar, error)

// Provider implementa interfaces.MarketDataProvider sobre piquette/finance-go
type Provider struct {
	quotes quoteSource
	charts chartSource
}

var _ interfaces.MarketDataProvider = (*Provider)(nil)

// NewProvider configura finance-go con el cliente HTTP del proveedor
// (proxy, timeout y cookie jar incluidos) y crea el adapter.
func NewProvider(cfg config.UpstreamConfig) *Provider {
	finance.SetHTTPClient(yahoo.NewHTTPClient(cfg))
	return &Provider{
		quotes: listQuotes,
		charts: getChart,
	}
}

func (p *Provider) Name() string {
	return ProviderName
}

// FetchQuotes usa quote.List, que resuelve todos los símbolos en un pedido
func (p *Provider) FetchQuotes(ctx context.Context, symbols []string) ([]entities.PriceQuote, error) {
	if len(symbols) == 0 {
		return []entities.PriceQuote{}, nil
	}

	const operation = "fetch_quotes"
	logging.Upstream().RequestStarted(ctx, ProviderName, operation, len(symbols))
	start := time.Now()

	raw, err := runWithContext(ctx, func() ([]*finance.Quote, error) {
		return p.quotes(symbols)
	})
	if err != nil {
		err = yahoo.ClassifyError(err)
		observe(ctx, operation, start, 0, err)
		return nil, err
	}

	requested := make(map[string]string, len(symbols))
	for _, s := range symbols {
		requested[strings.ToUpper(s)] = s
	}

	quotes := make([]entities.PriceQuote, 0, len(raw))
	for _, q := range raw {
		if q == nil {
			continue
		}
		symbol, ok := requested[strings.ToUpper(q.Symbol)]
		if !ok || q.RegularMarketPrice == 0 {
			continue
		}
		quotes = append(quotes, entities.NewPriceQuote(
			symbol,
			q.RegularMarketPrice,
			q.RegularMarketChange,
			q.RegularMarketChangePercent,
			utils.UnixSeconds(int64(q.RegularMarketTime)),
		))
	}

	observe(ctx, operation, start, len(quotes), nil)
	return quotes, nil
}

// FetchHistory usa chart.Get para un símbolo
func (p *Provider) FetchHistory(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error) {
	const operation = "fetch_history"
	logging.Upstream().RequestStarted(ctx, ProviderName, operation, 1)
	start := time.Now()

	startAt, endAt := window.Start, window.End
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&startAt),
		End:      datetime.New(&endAt),
		Interval: datetime.Interval(interval),
	}

	bars, err := runWithContext(ctx, func() ([]bar, error) {
		return p.charts(params)
	})
	if err != nil {
		err = classifyChartError(err)
		observe(ctx, operation, start, 0, err)
		return nil, err
	}

	points := make([]entities.HistoryPoint, 0, len(bars))
	for _, b := range bars {
		if b.high == 0 && b.low == 0 {
			continue
		}
		points = append(points, entities.HistoryPoint{
			Symbol: symbol,
			Date:   utils.UnixSeconds(b.timestamp),
			High:   b.high,
			Low:    b.low,
		})
	}
	if len(points) == 0 {
		err = entities.WrapCause(entities.ErrUpstream, yahoo.ErrEmptyHistory)
		observe(ctx, operation, start, 0, err)
		return nil, err
	}

	observe(ctx, operation, start, len(points), nil)
	return points, nil
}

// classifyChartError reconoce el "Not Found" que reporta el endpoint de chart
func classifyChartError(err error) error {
	if entities.ErrorCode(err) == "" && strings.Contains(strings.ToLower(err.Error()), "not found") {
		return entities.WrapCause(entities.ErrNotFound, err)
	}
	return yahoo.ClassifyError(err)
}

// runWithContext corre una llamada bloqueante de finance-go respetando ctx.
// Si ctx se cancela la goroutine termina sola cuando vence el timeout HTTP.
func runWithContext[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, entities.WrapCause(entities.ErrUpstream, ctx.Err())
	}
}

func listQuotes(symbols []string) ([]*finance.Quote, error) {
	iter := quote.List(symbols)
	out := make([]*finance.Quote, 0, len(symbols))
	for iter.Next() {
		out = append(out, iter.Quote())
	}
	return out, iter.Err()
}

func getChart(params *chart.Params) ([]bar, error) {
	iter := chart.Get(params)
	out := make([]bar, 0)
	for iter.Next() {
		b := iter.Bar()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		out = append(out, bar{timestamp: int64(b.Timestamp), high: high, low: low})
	}
	return out, iter.Err()
}

func observe(ctx context.Context, operation string, start time.Time, items int, err error) {
	duration := time.Since(start)
	metrics.RecordUpstreamCall(ProviderName, operation, yahoo.ResultLabel(err), duration.Seconds())

	durationMs := float64(duration.Nanoseconds()) / 1e6
	if err != nil {
		logging.Upstream().RequestFailed(ctx, ProviderName, operation, err, durationMs)
		return
	}
	logging.Upstream().RequestCompleted(ctx, ProviderName, operation, items, durationMs)
}

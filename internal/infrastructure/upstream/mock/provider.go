package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/pkg/utils"
)

const ProviderName = "mock"

// maxPoints acota series largas con intervalo horario
const maxPoints = 5000

// Provider implementa interfaces.MarketDataProvider con datos sintéticos.
// Los valores dependen solo del símbolo y la fecha, así que dos llamadas
// iguales devuelven lo mismo.
type Provider struct {
	mu         sync.RWMutex
	basePrices map[string]float64
	unknown    map[string]bool
	latency    time.Duration
	now        func() time.Time
}

var _ interfaces.MarketDataProvider = (*Provider)(nil)

// Option configura el Provider
type Option func(*Provider)

// WithUnknownSymbols marca símbolos que el proveedor no conoce
func WithUnknownSymbols(symbols ...string) Option {
	return func(p *Provider) {
		for _, s := range symbols {
			p.unknown[entities.NormalizeSymbol(s)] = true
		}
	}
}

// WithLatency simula la demora de red en cada llamada
func WithLatency(d time.Duration) Option {
	return func(p *Provider) {
		p.latency = d
	}
}

// WithClock fija la hora usada para el timestamp de los quotes
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider crea una nueva instancia del proveedor mock
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		basePrices: map[string]float64{
			"AAPL":  190.0,
			"MSFT":  410.0,
			"GOOGL": 140.0,
			"AMZN":  180.0,
			"TSLA":  240.0,
		},
		unknown: make(map[string]bool),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return ProviderName
}

// FetchQuotes retorna un quote por símbolo conocido; los desconocidos se omiten
func (p *Provider) FetchQuotes(ctx context.Context, symbols []string) ([]entities.PriceQuote, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	now := p.now().UTC().Truncate(time.Second)
	quotes := make([]entities.PriceQuote, 0, len(symbols))
	for _, symbol := range symbols {
		base, ok := p.basePrice(symbol)
		if !ok {
			continue
		}
		// variación diaria determinística en [-2%, +2%]
		variation := 0.02 * math.Sin(float64(utils.TruncateToDay(now).Unix()/86400)+seed(symbol))
		change := base * variation
		quotes = append(quotes, entities.NewPriceQuote(symbol, round2(base+change), round2(change), round2(variation*100), now))
	}

	logging.Debug(ctx, "MockProvider: generated quotes", logging.Fields{
		logging.FieldSymbolCount: len(symbols),
		logging.FieldItems:       len(quotes),
	})
	return quotes, nil
}

// FetchHistory genera una serie high/low para la ventana pedida
func (p *Provider) FetchHistory(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	base, ok := p.basePrice(symbol)
	if !ok {
		return nil, entities.Wrap(entities.ErrNotFound, "no data found, symbol may be delisted")
	}

	step := stepFor(interval)
	s := seed(symbol)
	points := make([]entities.HistoryPoint, 0)
	for t := utils.TruncateToDay(window.Start); !t.After(window.End) && len(points) < maxPoints; t = step(t) {
		if step24h(interval) && (t.Weekday() == time.Saturday || t.Weekday() == time.Sunday) {
			continue
		}
		x := float64(t.Unix())/86400 + s
		mid := base * (1 + 0.1*math.Sin(x/30))
		spread := mid * (0.005 + 0.01*math.Abs(math.Cos(x)))
		points = append(points, entities.HistoryPoint{
			Symbol: symbol,
			Date:   t,
			High:   round2(mid + spread),
			Low:    round2(mid - spread),
		})
	}

	if len(points) == 0 {
		return nil, entities.Wrap(entities.ErrUpstream, entities.MsgNoDataFound)
	}
	return points, nil
}

// AddSymbol agrega un símbolo con precio base (útil para testing)
func (p *Provider) AddSymbol(symbol string, basePrice float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	symbol = entities.NormalizeSymbol(symbol)
	p.basePrices[symbol] = basePrice
	delete(p.unknown, symbol)
}

// basePrice retorna el precio base; símbolos no registrados derivan uno del hash
func (p *Provider) basePrice(symbol string) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.unknown[symbol] {
		return 0, false
	}
	if base, ok := p.basePrices[symbol]; ok {
		return base, true
	}
	return 10 + math.Mod(seed(symbol)*97, 490), true
}

func (p *Provider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		if err := ctx.Err(); err != nil {
			return entities.WrapCause(entities.ErrUpstream, err)
		}
		return nil
	}
	select {
	case <-time.After(p.latency):
		return nil
	case <-ctx.Done():
		return entities.WrapCause(entities.ErrUpstream, ctx.Err())
	}
}

func seed(symbol string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return float64(h.Sum32()%10000) / 100
}

func stepFor(interval entities.Interval) func(time.Time) time.Time {
	switch interval {
	case entities.IntervalHour:
		return func(t time.Time) time.Time { return t.Add(time.Hour) }
	case entities.IntervalWeek:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case entities.IntervalMonth:
		return func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	default:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	}
}

// step24h indica intervalos diarios, donde los fines de semana no cotizan
func step24h(interval entities.Interval) bool {
	return interval == entities.IntervalDay || interval == ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

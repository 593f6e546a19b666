package services

import (
	"context"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"
	"market-data-service/internal/infrastructure/ratelimit"
	"market-data-service/internal/infrastructure/repositories/cache"
	"market-data-service/internal/infrastructure/retry"
)

const (
	DefaultSource     = "Yahoo Finance"
	DefaultPriceTTL   = 60 * time.Second
	DefaultHistoryTTL = 12 * time.Hour

	kindQuotes  = "quotes"
	kindHistory = "history"
)

// Options agrupa los parámetros del orquestador que no son dependencias
type Options struct {
	Source     string
	PriceTTL   time.Duration
	HistoryTTL time.Duration
	Retry      retry.Policy
}

// marketDataService implements the MarketDataService interface
type marketDataService struct {
	provider  interfaces.MarketDataProvider
	quotes    interfaces.StaleCache[entities.PriceQuote]
	history   interfaces.StaleCache[[]entities.HistoryPoint]
	pacer     *ratelimit.Pacer
	refresher *Refresher

	source     string
	priceTTL   time.Duration
	historyTTL time.Duration
	retry      retry.Policy
}

var _ interfaces.MarketDataService = (*marketDataService)(nil)

// NewMarketDataService creates a new instance of the market data orchestrator
func NewMarketDataService(
	provider interfaces.MarketDataProvider,
	quotes interfaces.StaleCache[entities.PriceQuote],
	history interfaces.StaleCache[[]entities.HistoryPoint],
	pacer *ratelimit.Pacer,
	refresher *Refresher,
	opts Options,
) interfaces.MarketDataService {
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if opts.PriceTTL <= 0 {
		opts.PriceTTL = DefaultPriceTTL
	}
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = DefaultHistoryTTL
	}
	if pacer == nil {
		pacer = ratelimit.NewPacer(0)
	}
	if refresher == nil {
		refresher = NewRefresher(config.RefreshConfig{})
	}

	return &marketDataService{
		provider:   provider,
		quotes:     quotes,
		history:    history,
		pacer:      pacer,
		refresher:  refresher,
		source:     opts.Source,
		priceTTL:   opts.PriceTTL,
		historyTTL: opts.HistoryTTL,
		retry:      opts.Retry,
	}
}

// NewMarketDataServiceFromConfig arma caches, pacer y refresher a partir de la configuración
func NewMarketDataServiceFromConfig(cfg *config.Config, provider interfaces.MarketDataProvider) interfaces.MarketDataService {
	quotes := cache.NewTTLCache[entities.PriceQuote](cache.Options{
		MaxEntries: cfg.Cache.MaxEntries,
		DefaultTTL: cfg.Cache.DefaultTTL,
		Name:       kindQuotes,
	})
	history := cache.NewTTLCache[[]entities.HistoryPoint](cache.Options{
		MaxEntries: cfg.Cache.MaxEntries,
		DefaultTTL: cfg.Cache.DefaultTTL,
		Name:       kindHistory,
	})

	return NewMarketDataService(
		provider,
		quotes,
		history,
		ratelimit.NewPacer(cfg.Upstream.PacingDelay),
		NewRefresher(cfg.Refresh),
		Options{
			Source:     cfg.API.SourceName,
			PriceTTL:   cfg.Cache.PriceTTL,
			HistoryTTL: cfg.Cache.HistoryTTL,
			Retry:      retry.PolicyFromConfig(cfg.Retry, ""),
		},
	)
}

// GetQuotes sirve hits frescos y stale desde cache y resuelve todos los
// miss con una sola llamada batch al proveedor.
func (s *marketDataService) GetQuotes(ctx context.Context, symbols []string) *entities.BatchResult[entities.PriceQuote] {
	symbols = entities.NormalizeSymbols(symbols)
	result := entities.NewBatchResult[entities.PriceQuote](s.source)

	logging.Market().BatchRequested(ctx, kindQuotes, symbols)
	metrics.RecordSymbolsRequested(kindQuotes, len(symbols))

	var misses []string
	for _, symbol := range symbols {
		key := cache.QuoteKey(symbol)
		quote, state := s.quotes.Lookup(key)
		metrics.RecordCacheLookup(kindQuotes, state.String())

		switch state {
		case interfaces.CacheFresh:
			logging.Cache().Hit(ctx, key)
			result.AddData(quote)
		case interfaces.CacheStale:
			logging.Cache().Stale(ctx, key)
			result.AddData(quote)
			s.scheduleQuoteRefresh(symbol)
		default:
			logging.Cache().Miss(ctx, key)
			misses = append(misses, symbol)
		}
	}

	if len(misses) > 0 {
		s.resolveQuoteMisses(ctx, misses, result)
	}

	logging.Market().BatchServed(ctx, kindQuotes, len(result.Data), len(result.Errors), result.Source)
	return result
}

func (s *marketDataService) resolveQuoteMisses(ctx context.Context, misses []string, result *entities.BatchResult[entities.PriceQuote]) {
	quotes, err := retry.Do(ctx, s.retry.WithOperation("fetch_quotes"), func(ctx context.Context) ([]entities.PriceQuote, error) {
		return s.provider.FetchQuotes(ctx, misses)
	})
	if err != nil {
		if entities.IsRateLimited(err) {
			result.AddError(entities.GlobalErrorSymbol, entities.MsgRateLimitedAborted)
		}
		for _, symbol := range misses {
			s.recordFailure(ctx, kindQuotes, symbol, err, result.AddError)
		}
		return
	}

	found := make(map[string]entities.PriceQuote, len(quotes))
	for _, quote := range quotes {
		found[quote.Symbol] = quote
		s.quotes.Set(cache.QuoteKey(quote.Symbol), quote, s.priceTTL)
		logging.Cache().Set(ctx, cache.QuoteKey(quote.Symbol), s.priceTTL.Seconds())
	}

	for _, symbol := range misses {
		quote, ok := found[symbol]
		if !ok {
			s.recordFailure(ctx, kindQuotes, symbol, entities.Wrap(entities.ErrNotFound, entities.MsgNoDataFound), result.AddError)
			continue
		}
		result.AddData(quote)
	}
}

func (s *marketDataService) scheduleQuoteRefresh(symbol string) {
	key := cache.QuoteKey(symbol)
	s.refresher.Schedule(key, kindQuotes, func(ctx context.Context) error {
		if err := s.pacer.Wait(ctx); err != nil {
			return err
		}

		quotes, err := retry.Do(ctx, s.retry.WithOperation("refresh_quotes"), func(ctx context.Context) ([]entities.PriceQuote, error) {
			return s.provider.FetchQuotes(ctx, []string{symbol})
		})
		if err != nil {
			return err
		}

		for _, quote := range quotes {
			if quote.Symbol == symbol {
				s.quotes.Set(key, quote, s.priceTTL)
				return nil
			}
		}
		return entities.Wrap(entities.ErrNotFound, entities.MsgNoDataFound)
	})
}

// GetHistory resuelve los miss de a uno, en el orden pedido y respetando el
// pacing. Un rate limit agotado corta el batch y marca los pendientes.
func (s *marketDataService) GetHistory(ctx context.Context, symbols []string, window entities.Window, interval entities.Interval) *entities.BatchResult[entities.HistoryPoint] {
	symbols = entities.NormalizeSymbols(symbols)
	if interval == "" {
		interval = entities.IntervalDay
	}
	result := entities.NewBatchResult[entities.HistoryPoint](s.source)

	logging.Market().BatchRequested(ctx, kindHistory, symbols)
	metrics.RecordSymbolsRequested(kindHistory, len(symbols))

	var misses []string
	for _, symbol := range symbols {
		key := cache.HistoryKey(symbol, window, interval)
		points, state := s.history.Lookup(key)
		metrics.RecordCacheLookup(kindHistory, state.String())

		switch state {
		case interfaces.CacheFresh:
			logging.Cache().Hit(ctx, key)
			result.AddData(points...)
		case interfaces.CacheStale:
			logging.Cache().Stale(ctx, key)
			result.AddData(points...)
			s.scheduleHistoryRefresh(symbol, window, interval)
		default:
			logging.Cache().Miss(ctx, key)
			misses = append(misses, symbol)
		}
	}

	s.resolveHistoryMisses(ctx, misses, window, interval, result)

	logging.Market().BatchServed(ctx, kindHistory, len(result.Data), len(result.Errors), result.Source)
	return result
}

func (s *marketDataService) resolveHistoryMisses(ctx context.Context, misses []string, window entities.Window, interval entities.Interval, result *entities.BatchResult[entities.HistoryPoint]) {
	for i, symbol := range misses {
		if err := s.pacer.Wait(ctx); err != nil {
			// el caller se fue; igual reportamos cada símbolo pendiente
			for _, pending := range misses[i:] {
				s.recordFailure(ctx, kindHistory, pending, err, result.AddError)
			}
			return
		}

		points, err := s.fetchHistory(ctx, symbol, window, interval)
		switch {
		case err == nil && len(points) == 0:
			s.recordFailure(ctx, kindHistory, symbol, entities.Wrap(entities.ErrNotFound, entities.MsgNoDataFound), result.AddError)
		case err == nil:
			key := cache.HistoryKey(symbol, window, interval)
			s.history.Set(key, points, s.historyTTL)
			logging.Cache().Set(ctx, key, s.historyTTL.Seconds())
			result.AddData(points...)
		case entities.IsRateLimited(err):
			result.AddError(entities.GlobalErrorSymbol, entities.MsgRateLimitedAborted)
			for _, pending := range misses[i:] {
				s.recordFailure(ctx, kindHistory, pending, err, result.AddError)
			}
			logging.Warn(ctx, "History batch aborted after rate limit exhaustion", logging.Fields{
				logging.FieldKind:        kindHistory,
				logging.FieldSymbolCount: len(misses) - i,
			})
			return
		default:
			s.recordFailure(ctx, kindHistory, symbol, err, result.AddError)
		}
	}
}

// fetchHistory pasa por el grupo singleflight del refresher: dos pedidos de
// la misma clave comparten una sola llamada al proveedor, sea otro miss o un
// refresco en segundo plano.
func (s *marketDataService) fetchHistory(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error) {
	key := cache.HistoryKey(symbol, window, interval)
	fetch := func() (interface{}, error) {
		return retry.Do(ctx, s.retry.WithOperation("fetch_history"), func(ctx context.Context) ([]entities.HistoryPoint, error) {
			return s.provider.FetchHistory(ctx, symbol, window, interval)
		})
	}

	v, err := s.refresher.Do(key, fetch)
	if err != nil {
		return nil, err
	}
	if points, ok := v.([]entities.HistoryPoint); ok {
		return points, nil
	}

	// la llamada compartida no trajo valor: lo que haya escrito está en cache
	if points, ok := s.history.GetAllowStale(key); ok {
		return points, nil
	}
	v, err = fetch()
	points, _ := v.([]entities.HistoryPoint)
	return points, err
}

func (s *marketDataService) scheduleHistoryRefresh(symbol string, window entities.Window, interval entities.Interval) {
	key := cache.HistoryKey(symbol, window, interval)
	s.refresher.ScheduleFetch(key, kindHistory, func(ctx context.Context) (interface{}, error) {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		points, err := retry.Do(ctx, s.retry.WithOperation("refresh_history"), func(ctx context.Context) ([]entities.HistoryPoint, error) {
			return s.provider.FetchHistory(ctx, symbol, window, interval)
		})
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			return nil, entities.Wrap(entities.ErrNotFound, entities.MsgNoDataFound)
		}

		s.history.Set(key, points, s.historyTTL)
		return points, nil
	})
}

// recordFailure registra el error de un símbolo en el batch, en logs y en métricas
func (s *marketDataService) recordFailure(ctx context.Context, kind, symbol string, err error, add func(symbol, message string)) {
	message := err.Error()
	if entities.IsRateLimited(err) {
		message = entities.MsgRateLimitedAborted
	}
	add(symbol, message)

	metrics.RecordSymbolError(kind, failureReason(err))
	logging.Market().SymbolFailed(ctx, kind, symbol, err)
}

// InvalidateHistory elimina todas las series del cache
func (s *marketDataService) InvalidateHistory() int {
	n := s.history.DeletePrefix(cache.HistoryPrefix)
	logging.Cache().Purged(context.Background(), cache.HistoryPrefix, n)
	return n
}

// Close detiene el refresher y espera los refrescos encolados
func (s *marketDataService) Close() {
	s.refresher.Close()
}

func failureReason(err error) string {
	switch {
	case entities.IsRateLimited(err):
		return "rate_limited"
	case entities.IsNotFound(err):
		return "not_found"
	case entities.ErrorCode(err) == entities.ErrUpstream.Code:
		return "upstream"
	default:
		return "other"
	}
}

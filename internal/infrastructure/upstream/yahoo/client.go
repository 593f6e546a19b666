package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"market-data-service/internal/domain/entities"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/logging"
	"market-data-service/internal/infrastructure/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	ProviderName     = "yahoo"
	DefaultQuoteURL  = "https://query1.finance.yahoo.com"
	DefaultChartURL  = "https://query2.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout   = 10 * time.Second

	// tras un fallo al pedir el crumb no se reintenta antes de este lapso
	crumbRetryInterval = time.Minute
	maxBodySize        = 8 << 20
)

// Client implementa interfaces.MarketDataProvider contra la API REST de Yahoo Finance
type Client struct {
	quoteURL   string
	chartURL   string
	cookieURL  string
	userAgent  string
	httpClient HTTPClient

	crumbMu      sync.Mutex
	crumb        string
	crumbRetryAt time.Time
	crumbGroup   singleflight.Group
}

var _ interfaces.MarketDataProvider = (*Client)(nil)

// Option configura el Client
type Option func(*Client)

// WithBaseURL apunta quote, chart y cookie al mismo host (tests, mirrors)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		baseURL = strings.TrimRight(baseURL, "/")
		c.quoteURL = baseURL
		c.chartURL = baseURL
		c.cookieURL = baseURL
	}
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient crea una nueva instancia del cliente de Yahoo
func NewClient(opts ...Option) *Client {
	c := &Client{
		quoteURL:  DefaultQuoteURL,
		chartURL:  DefaultChartURL,
		cookieURL: DefaultCookieURL,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(config.UpstreamConfig{})
	}
	return c
}

// NewClientWithConfig crea el cliente a partir de la configuración del proveedor
func NewClientWithConfig(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := NewClient(append([]Option{WithHTTPClient(NewHTTPClient(cfg)), WithUserAgent(cfg.UserAgent)}, opts...)...)
	if cfg.QuoteURL != "" {
		c.quoteURL = strings.TrimRight(cfg.QuoteURL, "/")
	}
	if cfg.ChartURL != "" {
		c.chartURL = strings.TrimRight(cfg.ChartURL, "/")
	}
	return c
}

func (c *Client) Name() string {
	return ProviderName
}

// FetchQuotes obtiene los quotes de todos los símbolos en una sola llamada.
// Los símbolos sin precio se omiten del resultado.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]entities.PriceQuote, error) {
	if len(symbols) == 0 {
		return []entities.PriceQuote{}, nil
	}

	const operation = "fetch_quotes"
	logging.Upstream().RequestStarted(ctx, ProviderName, operation, len(symbols))
	start := time.Now()

	quotes, err := c.doQuotesRequest(ctx, symbols)
	c.observe(ctx, operation, start, len(quotes), err)
	if err != nil {
		// un crumb rechazado se descarta para pedir uno nuevo la próxima vez
		if errors.Is(err, ErrInvalidCrumb) {
			c.resetCrumb()
		}
		return nil, err
	}
	return quotes, nil
}

func (c *Client) doQuotesRequest(ctx context.Context, symbols []string) ([]entities.PriceQuote, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	if crumb := c.getCrumb(ctx); crumb != "" {
		params.Set("crumb", crumb)
	}
	endpoint := fmt.Sprintf("%s/v7/finance/quote?%s", c.quoteURL, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, entities.WrapCause(entities.ErrUpstream, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	if resp.QuoteResponse.Error != nil {
		return nil, ClassifyError(fmt.Errorf("yahoo error: %s", resp.QuoteResponse.Error.Description))
	}

	requested := make(map[string]string, len(symbols))
	for _, s := range symbols {
		requested[strings.ToUpper(s)] = s
	}

	quotes := make([]entities.PriceQuote, 0, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		symbol, ok := requested[strings.ToUpper(r.Symbol)]
		if !ok {
			continue // Skip symbols we didn't request
		}
		if q, ok := r.ToPriceQuote(symbol); ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}

// FetchHistory obtiene la serie high/low de un símbolo para la ventana pedida
func (c *Client) FetchHistory(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error) {
	const operation = "fetch_history"
	logging.Upstream().RequestStarted(ctx, ProviderName, operation, 1)
	start := time.Now()

	points, err := c.doChartRequest(ctx, symbol, window, interval)
	c.observe(ctx, operation, start, len(points), err)
	return points, err
}

func (c *Client) doChartRequest(ctx context.Context, symbol string, window entities.Window, interval entities.Interval) ([]entities.HistoryPoint, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(window.Start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(window.End.Unix(), 10))
	params.Set("interval", string(interval))
	params.Set("includePrePost", "false")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.chartURL, url.PathEscape(symbol), params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		// Yahoo responde 404 con chart.error para símbolos desconocidos
		var resp chartResponse
		if json.Unmarshal(body, &resp) == nil && resp.Chart.Error.IsNotFound() {
			return nil, entities.Wrap(entities.ErrNotFound, resp.Chart.Error.Description)
		}
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, entities.WrapCause(entities.ErrUpstream, fmt.Errorf("%w: %v", ErrDecode, err))
	}
	if e := resp.Chart.Error; e != nil {
		if e.IsNotFound() {
			return nil, entities.Wrap(entities.ErrNotFound, e.Description)
		}
		return nil, ClassifyError(fmt.Errorf("yahoo error: %s", e.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, entities.WrapCause(entities.ErrUpstream, ErrEmptyHistory)
	}

	points := resp.Chart.Result[0].ToHistoryPoints(symbol)
	if len(points) == 0 {
		return nil, entities.WrapCause(entities.ErrUpstream, ErrEmptyHistory)
	}
	return points, nil
}

// get ejecuta un GET y retorna el body. Ante un status no-200 retorna
// también el body para que el llamador pueda inspeccionarlo.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, entities.WrapCause(entities.ErrUpstream, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ClassifyError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, ClassifyError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return body, classifyStatus(resp.StatusCode, body)
	}
	return body, nil
}

// getCrumb obtiene (una vez) el crumb de sesión. Si no se puede, retorna ""
// y el pedido sale sin crumb. El bootstrap corre fuera de crumbMu y los
// pedidos concurrentes comparten una sola ida al host.
func (c *Client) getCrumb(ctx context.Context) string {
	c.crumbMu.Lock()
	crumb, retryAt := c.crumb, c.crumbRetryAt
	c.crumbMu.Unlock()

	if crumb != "" || time.Now().Before(retryAt) {
		return crumb
	}

	ch := c.crumbGroup.DoChan("crumb", func() (interface{}, error) {
		crumb, err := c.fetchCrumb(context.WithoutCancel(ctx))

		c.crumbMu.Lock()
		defer c.crumbMu.Unlock()
		if err != nil {
			c.crumbRetryAt = time.Now().Add(crumbRetryInterval)
			logging.Upstream().Debug(ctx, "Yahoo crumb unavailable, continuing without it", logging.Fields{
				logging.FieldProvider: ProviderName,
				"error":               err.Error(),
			})
			return "", nil
		}
		c.crumb = crumb
		return crumb, nil
	})

	select {
	case res := <-ch:
		crumb, _ := res.Val.(string)
		return crumb
	case <-ctx.Done():
		return ""
	}
}

func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	// la cookie de sesión queda en el jar del http.Client; el status no importa
	if req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, nil); err == nil {
		req.Header.Set("User-Agent", c.userAgent)
		if resp, err := c.httpClient.Do(req); err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("crumb request returned HTTP %d", resp.StatusCode)
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.Contains(crumb, "<") {
		return "", fmt.Errorf("invalid crumb received")
	}
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()
	c.crumb = ""
}

// observe registra métricas y logs de una llamada terminada
func (c *Client) observe(ctx context.Context, operation string, start time.Time, items int, err error) {
	duration := time.Since(start)
	metrics.RecordUpstreamCall(ProviderName, operation, ResultLabel(err), duration.Seconds())

	durationMs := float64(duration.Nanoseconds()) / 1e6
	if err != nil {
		logging.Upstream().RequestFailed(ctx, ProviderName, operation, err, durationMs)
		return
	}
	logging.Upstream().RequestCompleted(ctx, ProviderName, operation, items, durationMs)
}

// ResultLabel es la etiqueta de resultado para las métricas de upstream
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case entities.IsRateLimited(err):
		return "rate_limited"
	case entities.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

package handlers

import (
	"net/http"
	"time"

	"market-data-service/internal/application/dto"
	"market-data-service/internal/domain/interfaces"
	"market-data-service/internal/infrastructure/logging"
)

// MarketHandler atiende los pedidos de precios e históricos en batch
type MarketHandler struct {
	market     interfaces.MarketDataService
	mapper     *dto.MarketMapper
	maxSymbols int
	now        func() time.Time
}

// NewMarketHandler creates a new instance of the market handler
func NewMarketHandler(market interfaces.MarketDataService, maxSymbols int) *MarketHandler {
	if maxSymbols <= 0 {
		maxSymbols = dto.DefaultMaxSymbols
	}
	return &MarketHandler{
		market:     market,
		mapper:     dto.NewMarketMapper(),
		maxSymbols: maxSymbols,
		now:        time.Now,
	}
}

// GetQuotes godoc
// @Summary Current quotes for a batch of symbols
// @Description Returns the latest price of each symbol. Cached values are served while fresh; stale values are served and refreshed in the background. Per-symbol failures are listed in errors and never fail the request.
// @Tags market
// @Produce json
// @Param symbols query string true "Comma separated symbols" example(AAPL,MSFT)
// @Success 200 {object} dto.QuotesResponse "Batch result"
// @Failure 400 {object} dto.ErrorResponse "Invalid symbols"
// @Router /api/v1/quotes [get]
func (h *MarketHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("symbols")
	h.serveQuotes(w, r, dto.NewQuotesRequest(raw), raw)
}

// PostQuotes godoc
// @Summary Current quotes for a batch of symbols (JSON body)
// @Tags market
// @Accept json
// @Produce json
// @Param request body dto.QuotesRequest true "Symbols"
// @Success 200 {object} dto.QuotesResponse "Batch result"
// @Failure 400 {object} dto.ErrorResponse "Invalid body or symbols"
// @Router /api/v1/quotes [post]
func (h *MarketHandler) PostQuotes(w http.ResponseWriter, r *http.Request) {
	var request dto.QuotesRequest
	if err := decodeBody(w, r, &request); err != nil {
		logging.Market().ValidationFailed(r.Context(), "body", err.Error())
		writeErrorResponse(r.Context(), w, http.StatusBadRequest, errInvalidBody, "invalid JSON body: "+err.Error(), "")
		return
	}
	h.serveQuotes(w, r, &request, "body")
}

func (h *MarketHandler) serveQuotes(w http.ResponseWriter, r *http.Request, request *dto.QuotesRequest, input string) {
	ctx := r.Context()

	if err := request.Validate(h.maxSymbols); err != nil {
		writeValidationError(ctx, w, input, err)
		return
	}

	result := h.market.GetQuotes(ctx, request.Symbols)
	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToQuotesResponse(result))
}

// GetHistory godoc
// @Summary Historical high/low series for a batch of symbols
// @Description Symbols are fetched one at a time with pacing between upstream calls. Without dates the last three years are returned. A rate limited batch reports GLOBAL plus every symbol that was not processed.
// @Tags market
// @Produce json
// @Param symbols query string true "Comma separated symbols" example(AAPL,MSFT)
// @Param start query string false "Window start (YYYY-MM-DD)"
// @Param end query string false "Window end (YYYY-MM-DD, inclusive)"
// @Param interval query string false "Interval" Enums(1h,1d,1wk,1mo) default(1d)
// @Success 200 {object} dto.HistoryResponse "Batch result"
// @Failure 400 {object} dto.ErrorResponse "Invalid symbols, dates or interval"
// @Router /api/v1/history [get]
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	request := &dto.HistoryRequest{
		Symbols:  dto.SplitSymbols(query.Get("symbols")),
		Start:    query.Get("start"),
		End:      query.Get("end"),
		Interval: query.Get("interval"),
	}
	h.serveHistory(w, r, request, r.URL.RawQuery)
}

// PostHistory godoc
// @Summary Historical high/low series for a batch of symbols (JSON body)
// @Tags market
// @Accept json
// @Produce json
// @Param request body dto.HistoryRequest true "Symbols, window and interval"
// @Success 200 {object} dto.HistoryResponse "Batch result"
// @Failure 400 {object} dto.ErrorResponse "Invalid body, symbols, dates or interval"
// @Router /api/v1/history [post]
func (h *MarketHandler) PostHistory(w http.ResponseWriter, r *http.Request) {
	var request dto.HistoryRequest
	if err := decodeBody(w, r, &request); err != nil {
		logging.Market().ValidationFailed(r.Context(), "body", err.Error())
		writeErrorResponse(r.Context(), w, http.StatusBadRequest, errInvalidBody, "invalid JSON body: "+err.Error(), "")
		return
	}
	h.serveHistory(w, r, &request, "body")
}

func (h *MarketHandler) serveHistory(w http.ResponseWriter, r *http.Request, request *dto.HistoryRequest, input string) {
	ctx := r.Context()

	query, err := request.Validate(h.maxSymbols, h.now())
	if err != nil {
		writeValidationError(ctx, w, input, err)
		return
	}

	logging.Debug(ctx, "Serving history batch", logging.Fields{
		logging.FieldSymbols: query.Symbols,
		"window":             query.Window.Key(),
		"interval":           string(query.Interval),
	})

	result := h.market.GetHistory(ctx, query.Symbols, query.Window, query.Interval)
	writeJSONResponse(ctx, w, http.StatusOK, h.mapper.ToHistoryResponse(result))
}

package server

import (
	"net/http"

	_ "market-data-service/internal/docs"
	"market-data-service/internal/infrastructure/config"
	"market-data-service/internal/infrastructure/metrics"
	"market-data-service/internal/infrastructure/ratelimit"
	"market-data-service/internal/infrastructure/web/handlers"
	"market-data-service/internal/infrastructure/web/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers agrupa los handlers que expone el router
type Handlers struct {
	Market *handlers.MarketHandler
	Stocks *handlers.StocksHandler
	Health *handlers.HealthHandler
	Stream *handlers.StreamHandler
}

// NewRouter registra las rutas y envuelve el router con la cadena de middleware:
// recovery, tracing, logging, CORS, métricas y rate limit (de afuera hacia adentro).
func NewRouter(cfg *config.Config, h Handlers) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Health.Banner).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Health.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/quotes", h.Market.GetQuotes).Methods(http.MethodGet)
	v1.HandleFunc("/quotes", h.Market.PostQuotes).Methods(http.MethodPost)
	v1.HandleFunc("/history", h.Market.GetHistory).Methods(http.MethodGet)
	v1.HandleFunc("/history", h.Market.PostHistory).Methods(http.MethodPost)
	if h.Stream != nil {
		v1.HandleFunc("/stream", h.Stream.Stream).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/yahoo/{symbol}", h.Stocks.FetchYahoo).Methods(http.MethodGet)
	api.HandleFunc("/stocks/clear-all", h.Stocks.ClearAll).Methods(http.MethodDelete)
	api.HandleFunc("/stocks/{symbol}", h.Stocks.GetStored).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/docs", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently))

	rateLimiter := ratelimit.NewRateLimitMiddlewareWithConfig(cfg.RateLimit)

	var handler http.Handler = r
	handler = rateLimiter.Handler(handler)
	handler = metrics.HTTPMetricsMiddleware(handler)
	handler = middleware.CORSMiddleware(cfg.Server.CORSOrigins)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestTracingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

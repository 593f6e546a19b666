package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"market-data-service/internal/infrastructure/logging"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer creates a new server instance. Los batches históricos se resuelven
// con pacing entre símbolos, así que el WriteTimeout es holgado.
func NewServer(handler http.Handler, port int) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
		port: port,
	}
}

// Start starts the HTTP server. Retorna nil cuando el cierre fue ordenado.
func (s *Server) Start() error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
	})

	logging.Info(ctx, "Available endpoints", logging.Fields{
		"endpoints": []string{
			fmt.Sprintf("GET    http://localhost:%d/health", s.port),
			fmt.Sprintf("GET    http://localhost:%d/ready", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/quotes?symbols=AAPL,MSFT", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/history?symbols=AAPL&start=2024-01-01", s.port),
			fmt.Sprintf("GET    ws://localhost:%d/api/v1/stream?symbols=AAPL&interval=5s", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/yahoo/AAPL", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/stocks/AAPL", s.port),
			fmt.Sprintf("DELETE http://localhost:%d/api/stocks/clear-all", s.port),
			fmt.Sprintf("GET    http://localhost:%d/swagger/index.html", s.port),
		},
	})

	return s.serve(func() error { return s.httpServer.ListenAndServe() })
}

// Serve atiende sobre un listener ya abierto
func (s *Server) Serve(l net.Listener) error {
	return s.serve(func() error { return s.httpServer.Serve(l) })
}

func (s *Server) serve(run func() error) error {
	if err := run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server on port %d: %w", s.port, err)
	}
	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}

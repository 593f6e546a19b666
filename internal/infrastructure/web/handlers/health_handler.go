package handlers

import (
	"context"
	"net/http"

	"market-data-service/internal/application/dto"
)

// ReadinessChecker verifica una dependencia externa
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	snapshot ReadinessChecker
	provider string
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(snapshot ReadinessChecker, provider string) *HealthHandler {
	return &HealthHandler{
		snapshot: snapshot,
		provider: provider,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running correctly. Responds quickly without checking external dependencies.
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running correctly"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service": "running",
	}

	writeJSONResponse(r.Context(), w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// Ready godoc
// @Summary Complete readiness check
// @Description Verifies that the service is ready to receive traffic, pinging the snapshot store.
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is ready to receive traffic"
// @Failure 503 {object} dto.HealthResponse "Service is not ready - dependencies are failing"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services := map[string]string{
		"provider": h.provider,
	}

	if err := h.snapshot.Ready(ctx); err != nil {
		services["snapshot"] = "error: " + err.Error()
		writeJSONResponse(ctx, w, http.StatusServiceUnavailable, dto.NewHealthResponse("unhealthy", services))
		return
	}

	services["snapshot"] = "ready"
	services["service"] = "ready"

	writeJSONResponse(ctx, w, http.StatusOK, dto.NewHealthResponse("ready", services))
}

// Banner responde la raíz con un texto plano
func (h *HealthHandler) Banner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Market data service is running. See /swagger/ for the API.\n"))
}

package yahoo

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"market-data-service/internal/domain/entities"
)

var (
	ErrDecode       = errors.New("failed to decode yahoo response")
	ErrInvalidCrumb = errors.New("yahoo rejected the session crumb")
	ErrEmptyHistory = errors.New("no data found")
)

// IsRateLimitMessage detecta el throttling por el texto del error.
// Algunos clientes solo exponen el mensaje, no el status code.
func IsRateLimitMessage(msg string) bool {
	return strings.Contains(msg, "429") ||
		strings.Contains(strings.ToLower(msg), "too many requests")
}

// ClassifyError lleva cualquier error del proveedor a la taxonomía de dominio:
// ErrRateLimited si es throttling, ErrUpstream para todo lo demás.
// Un error ya clasificado se devuelve sin cambios.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if entities.ErrorCode(err) != "" {
		return err
	}
	if IsRateLimitMessage(err.Error()) {
		return entities.WrapCause(entities.ErrRateLimited, err)
	}
	return entities.WrapCause(entities.ErrUpstream, err)
}

// classifyStatus convierte una respuesta no-200 en error de dominio
func classifyStatus(statusCode int, body []byte) error {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	cause := fmt.Errorf("HTTP %d: %s", statusCode, snippet)
	switch {
	case statusCode == http.StatusTooManyRequests:
		return entities.WrapCause(entities.ErrRateLimited, cause)
	case IsRateLimitMessage(snippet):
		return entities.WrapCause(entities.ErrRateLimited, cause)
	case statusCode == http.StatusUnauthorized:
		return entities.WrapCause(entities.ErrUpstream, fmt.Errorf("%w: %v", ErrInvalidCrumb, cause))
	default:
		return entities.WrapCause(entities.ErrUpstream, cause)
	}
}

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"market-data-service/internal/infrastructure/logging"
)

// RecoveryMiddleware convierte un panic del handler en un 500
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logging.ErrorWithError(r.Context(), "Panic while serving request", fmt.Errorf("panic: %v", rec), logging.Fields{
				logging.FieldHTTPMethod: r.Method,
				logging.FieldHTTPPath:   r.URL.Path,
				"stack":                 string(debug.Stack()),
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "INTERNAL_ERROR",
				"message": "internal server error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}

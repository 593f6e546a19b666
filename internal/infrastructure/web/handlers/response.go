package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"market-data-service/internal/application/dto"
	"market-data-service/internal/domain/entities"
	"market-data-service/internal/infrastructure/logging"
)

// Códigos de error expuestos en ErrorResponse.Error
const (
	errInvalidParameter = "INVALID_PARAMETER"
	errInvalidBody      = "INVALID_BODY"
	errNotFound         = "NOT_FOUND"
	errSnapshot         = "SNAPSHOT_ERROR"
	errInternal         = "INTERNAL_ERROR"
)

// maxBodyBytes acota el cuerpo de las requests POST
const maxBodyBytes = 1 << 20

// writeJSONResponse escribe una respuesta JSON preservando el contexto del request
func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.ErrorWithError(ctx, "Failed to encode JSON response", err, logging.Fields{
			logging.FieldHTTPStatusCode: statusCode,
		})
	}
}

// writeErrorResponse escribe una respuesta de error estándar
func writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, errorCode, message, code string) {
	writeJSONResponse(ctx, w, statusCode, dto.NewErrorResponseWithCode(errorCode, message, code))
}

// writeValidationError responde 400 con el detalle de la validación
func writeValidationError(ctx context.Context, w http.ResponseWriter, input string, err error) {
	logging.Market().ValidationFailed(ctx, input, err.Error())
	writeErrorResponse(ctx, w, http.StatusBadRequest, errInvalidParameter, err.Error(), entities.ErrorCode(err))
}

// decodeBody decodifica el cuerpo JSON en dst rechazando campos desconocidos
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

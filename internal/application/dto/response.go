package dto

import (
	"time"
)

// QuoteData represents an individual quote in the response
// @Description Current price snapshot for a symbol
type QuoteData struct {
	Symbol        string    `json:"symbol" example:"AAPL"`                   // Ticker symbol
	Price         float64   `json:"price" example:"189.84"`                  // Last regular market price
	Change        float64   `json:"change" example:"1.23"`                   // Absolute change versus previous close
	ChangePercent float64   `json:"changePercent" example:"0.65"`            // Percent change versus previous close
	AsOf          time.Time `json:"asOfTime" example:"2025-01-02T21:00:00Z"` // Quote timestamp
}

// HistoryData represents one high/low record of a historical series
// @Description Daily (or interval) high and low for a symbol
type HistoryData struct {
	Symbol string    `json:"symbol" example:"AAPL"`
	Date   time.Time `json:"date" example:"2025-01-02T00:00:00Z"`
	High   float64   `json:"high" example:"192.1"`
	Low    float64   `json:"low" example:"187.4"`
}

// SymbolError represents an error for a specific symbol
// @Description Error when resolving a specific symbol; GLOBAL marks an aborted batch
type SymbolError struct {
	Symbol string `json:"symbol" example:"BBB"`          // Symbol that failed, or GLOBAL
	Error  string `json:"error" example:"no data found"` // Failure description
}

// QuotesResponse represents the response from the quotes endpoints
// @Description Batch of quotes with per-symbol errors
type QuotesResponse struct {
	Source string        `json:"source" example:"Yahoo Finance"`
	Data   []QuoteData   `json:"data"`
	Errors []SymbolError `json:"errors"`
}

// HistoryResponse represents the response from the history endpoints
// @Description Batch of historical series with per-symbol errors
type HistoryResponse struct {
	Source  string        `json:"source" example:"Yahoo Finance"`
	Data    []HistoryData `json:"data"`
	Errors  []SymbolError `json:"errors"`
	Warning string        `json:"warning,omitempty" example:"snapshot not persisted"` // Set when the snapshot could not be saved
}

// StoredHistoryResponse represents a snapshot read
// @Description History stored in the snapshot backend
type StoredHistoryResponse struct {
	Source string        `json:"source" example:"Snapshot"`
	Data   []HistoryData `json:"data"`
}

// ClearAllResponse represents the response of DELETE /api/stocks/clear-all
type ClearAllResponse struct {
	Message      string `json:"message" example:"All stock data cleared!"`
	DeletedCount int64  `json:"deletedCount" example:"756"`
}

// ErrorResponse represents a standard error response for endpoints
// @Description Standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error" example:"INVALID_PARAMETER" validate:"required"`       // Main error message
	Message string `json:"message,omitempty" example:"at least one symbol is required"` // Detailed error description
	Code    string `json:"code,omitempty" example:"VALIDATION_ERROR"`                   // Internal error code
}

// HealthResponse represents the health check response with service status
// @Description Health check response with service status
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" validate:"required" enums:"healthy,degraded,unhealthy"` // Overall service status
	Timestamp time.Time         `json:"timestamp" example:"2023-12-01T10:30:00Z" validate:"required"`                    // When the health check was performed
	Services  map[string]string `json:"services,omitempty" example:"snapshot:healthy,provider:yahoo"`                    // Individual service statuses
}

// NewErrorResponse creates a new error response
func NewErrorResponse(error string, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
	}
}

// NewErrorResponseWithCode creates an error response with code
func NewErrorResponseWithCode(error string, message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	}
}

// NewHealthResponse creates a health check response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}
}

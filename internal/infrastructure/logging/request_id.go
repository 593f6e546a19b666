package logging

import (
	"strings"

	"github.com/google/uuid"
)

// RequestIDGenerator generates unique request IDs
type RequestIDGenerator struct {
	prefix string
}

// NewRequestIDGenerator creates a new request ID generator
func NewRequestIDGenerator(prefix string) *RequestIDGenerator {
	return &RequestIDGenerator{
		prefix: prefix,
	}
}

// Generate creates a new unique request ID
// Format: {prefix}_{uuid} o solo {uuid} sin prefijo
func (g *RequestIDGenerator) Generate() string {
	id := uuid.NewString()
	if g.prefix == "" {
		return id
	}
	return g.prefix + "_" + id
}

// GenerateShort usa solo el primer bloque del UUID
func (g *RequestIDGenerator) GenerateShort() string {
	id := uuid.NewString()
	short := id[:strings.IndexByte(id, '-')]
	if g.prefix == "" {
		return short
	}
	return g.prefix + "_" + short
}

var defaultGenerator = NewRequestIDGenerator("")

// GenerateRequestID generates a request ID using the default generator
func GenerateRequestID() string {
	return defaultGenerator.Generate()
}

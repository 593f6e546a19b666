package entities

import (
	"regexp"
	"strings"
)

// validSymbol acepta tickers como AAPL, BRK-B, RELIANCE.NS, ^GSPC, EURUSD=X
var validSymbol = regexp.MustCompile(`^[A-Z0-9.^=\-]{1,20}$`)

// NormalizeSymbol deja un ticker en su forma canónica (mayúsculas, sin espacios).
// Se aplica una sola vez, al entrar al sistema.
func NormalizeSymbol(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeSymbols normaliza una lista descartando entradas vacías.
// No deduplica: los duplicados solo generan trabajo redundante.
func NormalizeSymbols(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if n := NormalizeSymbol(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ValidateSymbol verifica el formato de un símbolo ya normalizado
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return Wrap(ErrValidation, "symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return Wrap(ErrValidation, "invalid symbol format: "+symbol)
	}
	return nil
}

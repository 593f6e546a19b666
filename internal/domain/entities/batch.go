package entities

// GlobalErrorSymbol marca un error que afecta a todo el batch
const GlobalErrorSymbol = "GLOBAL"

// Mensajes estándar para errores por símbolo
const (
	MsgNoDataFound        = "no data found"
	MsgRateLimitedAborted = "rate limited, aborting"
)

// SymbolError describe por qué un símbolo no pudo resolverse
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// BatchResult es el resultado de una invocación del orquestador.
// Se construye por llamada y no se persiste.
type BatchResult[T any] struct {
	Source string        `json:"source"`
	Data   []T           `json:"data"`
	Errors []SymbolError `json:"errors"`
}

func NewBatchResult[T any](source string) *BatchResult[T] {
	return &BatchResult[T]{
		Source: source,
		Data:   make([]T, 0),
		Errors: make([]SymbolError, 0),
	}
}

func (b *BatchResult[T]) AddData(items ...T) {
	b.Data = append(b.Data, items...)
}

func (b *BatchResult[T]) AddError(symbol, message string) {
	b.Errors = append(b.Errors, SymbolError{Symbol: symbol, Error: message})
}

// HasGlobalError indica si el batch fue abortado
func (b *BatchResult[T]) HasGlobalError() bool {
	for _, e := range b.Errors {
		if e.Symbol == GlobalErrorSymbol {
			return true
		}
	}
	return false
}

// ErrorSymbols retorna los símbolos con error (sin GLOBAL)
func (b *BatchResult[T]) ErrorSymbols() map[string]bool {
	out := make(map[string]bool, len(b.Errors))
	for _, e := range b.Errors {
		if e.Symbol != GlobalErrorSymbol {
			out[e.Symbol] = true
		}
	}
	return out
}

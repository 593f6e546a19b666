package snapshot

import "errors"

var (
	ErrUnknownBackend = errors.New("unsupported snapshot backend")
	ErrInvalidSymbol  = errors.New("snapshot symbol cannot be empty")
)

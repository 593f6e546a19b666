package entities

import (
	"errors"
	"fmt"
)

// Error es un error de dominio con código estable
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is compara por código para que errors.Is funcione con errores envueltos
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Taxonomía de errores del servicio
var (
	ErrRateLimited = &Error{Code: "RATE_LIMITED", Message: "rate limited by upstream"}
	ErrNotFound    = &Error{Code: "NOT_FOUND", Message: "no data found"}
	ErrUpstream    = &Error{Code: "UPSTREAM_ERROR", Message: "upstream error"}
	ErrValidation  = &Error{Code: "VALIDATION_ERROR", Message: "invalid request"}
)

// Wrap crea un error con el código de base y un detalle
func Wrap(base *Error, detail string) *Error {
	return &Error{Code: base.Code, Message: detail}
}

// WrapCause crea un error con el código de base y una causa
func WrapCause(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Cause: cause}
}

func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ErrorCode extrae el código de dominio, o "" si no tiene
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Package apierror defines the typed failures the services return and the
// JSON envelope every 4xx/5xx response uses. Handlers never build error
// responses by hand; they resolve errors through StatusAndBody so internal
// detail (driver errors, stack traces) is never leaked to clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure. Each kind maps to one HTTP status.
type Kind int

const (
	KindNotFound Kind = iota
	KindConflict
	KindInvalidInput
	KindStateConflict
	KindInsufficient
	KindUnauthorized
	KindForbidden
	KindOperationFailed
)

func (k Kind) status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindStateConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindInsufficient:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a user-facing domain failure. Detail is safe to return to the
// client; Cause (optional) carries the internal error for logging only.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Cause)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ── Constructors ────────────────────────────────────────────────────────────

func NotFound(entity, id string) *Error {
	return newf(KindNotFound, "%s con id %s no encontrado", entity, id)
}

func Conflict(detail string) *Error { return newf(KindConflict, "%s", detail) }

func InvalidInput(detail string) *Error { return newf(KindInvalidInput, "%s", detail) }

func StateConflict(detail string) *Error { return newf(KindStateConflict, "%s", detail) }

func Insufficient(detail string) *Error { return newf(KindInsufficient, "%s", detail) }

func Unauthorized(detail string) *Error { return newf(KindUnauthorized, "%s", detail) }

// OperationFailed wraps an unexpected internal error (persistence failures,
// encoding errors). The cause travels with the error for logging but the
// client only ever sees the generic detail.
func OperationFailed(detail string, cause error) *Error {
	return &Error{Kind: KindOperationFailed, Detail: detail, Cause: cause}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// ── Envelope ────────────────────────────────────────────────────────────────

// APIError is the canonical error body for all 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError { return &APIError{Detail: msg} }

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// StatusAndBody resolves any error into an HTTP status plus a safe body.
// Non-domain errors collapse to a generic 500.
func StatusAndBody(err error) (int, *APIError) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind.status(), New(de.Detail)
	}
	return http.StatusInternalServerError, New("Error interno del servidor")
}

// Package apierror holds the error kinds services return and the JSON
// envelopes handlers answer with. Responses carry a "detail" message and,
// for validation failures, the offending fields.
package apierror

import (
	"errors"
	"net/http"
)

// Error kinds shared by services and handlers. Services wrap them with
// fmt.Errorf("...: %w", ErrX) so the message stays specific while the kind
// stays matchable.
var (
	ErrUnauthenticated   = errors.New("autenticação requerida")
	ErrForbidden         = errors.New("acesso negado")
	ErrNotFound          = errors.New("não encontrado")
	ErrInvalidInput      = errors.New("dados inválidos")
	ErrInvalidState      = errors.New("estado inválido")
	ErrReferenceNotFound = errors.New("referência não encontrada")
)

// StatusFor maps an error chain to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrReferenceNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Known reports whether err belongs to one of the kinds above.
func Known(err error) bool {
	return StatusFor(err) != http.StatusInternalServerError
}

// APIError is the body of every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError { return &APIError{Detail: msg} }

// ValidationError lists failed fields as field → validator tag.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

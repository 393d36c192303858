package services

import "errors"

// Error kinds. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// Error carries a client-facing message together with its kind
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func badRequest(msg string) error   { return &Error{Kind: ErrBadRequest, Message: msg} }
func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
func forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Message: msg} }
func notFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func conflict(msg string) error     { return &Error{Kind: ErrConflict, Message: msg} }
func serverError(msg string) error  { return &Error{Kind: ErrServer, Message: msg} }

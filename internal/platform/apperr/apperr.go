// Package apperr defines the error kinds surfaced by the API and their
// mapping to HTTP responses. Clients only ever see the kind and a static
// message; the wrapped error travels as the echo HTTPError internal so the
// request logger records it.
package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error for the client.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindRateLimited       Kind = "rate_limited"
	KindStorage           Kind = "storage"
)

var statusByKind = map[Kind]int{
	KindNotFound:          http.StatusNotFound,
	KindValidation:        http.StatusBadRequest,
	KindUnauthorized:      http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindInvalidTransition: http.StatusConflict,
	KindRateLimited:       http.StatusTooManyRequests,
	KindStorage:           http.StatusInternalServerError,
}

// Error is an error tagged with a Kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Body is the JSON shape of every error response.
type Body struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Validation(msg string) *Error   { return New(KindValidation, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }

// Storage wraps an unexpected persistence failure. The message shown to
// the client is always generic.
func Storage(msg string, err error) *Error { return Wrap(KindStorage, msg, err) }

// KindOf reports the Kind of err. Untagged errors are storage errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTP converts err into an echo HTTPError. fallback is the message used
// for untagged errors so that no driver detail leaks to the client.
func HTTP(err error, fallback string) *echo.HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		e = Storage(fallback, err)
	}
	msg := e.Message
	if msg == "" {
		msg = fallback
	}
	status, ok := statusByKind[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, Body{Error: e.Kind, Message: msg}).SetInternal(err)
}

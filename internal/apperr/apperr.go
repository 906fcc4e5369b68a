// Package apperr classifies failures into the kinds the API surfaces to
// clients: validation, authorization, not-found and persistence. Handlers
// map the kind to an HTTP status; persistence details never reach the
// client.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the failure class of an Error.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindUnauthorized  Kind = "unauthorized"
	KindPersistence   Kind = "persistence"
)

// Error is a classified failure with a client-facing message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports bad input. Surfaced as 400.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

// ValidationField reports bad input on a named field. Surfaced as 400.
func ValidationField(field, message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Field: field}
}

// Unprocessable reports a well-formed request with an unrecognized or
// unusable value. Surfaced as 422.
func Unprocessable(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: message}
}

// UnprocessableField is Unprocessable with a named field.
func UnprocessableField(field, message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: message, Field: field}
}

// Authorization reports that the caller may not perform the action.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusForbidden, Message: message}
}

// Unauthorized reports missing or bad credentials.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

// NotFound reports that a referenced entity does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// Conflict reports a uniqueness collision (e.g. duplicate email).
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: message}
}

// Persistence wraps a storage failure. The client sees only an opaque
// try-again message; the cause stays in the logs.
func Persistence(err error) *Error {
	return &Error{
		Kind:    KindPersistence,
		Status:  http.StatusInternalServerError,
		Message: "something went wrong, please try again",
		Err:     err,
	}
}

// From extracts an *Error from err, or nil if err is not classified.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

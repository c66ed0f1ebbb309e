// Package apperr defines the error kinds surfaced by handlers and how each
// maps onto an HTTP status and JSON body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
)

// Error is a classified failure. Fields carries field-level messages for
// validation failures; Key names the JSON key used for Message when Fields
// is empty ("error" unless set).
type Error struct {
	Kind    Kind
	Message string
	Key     string
	Fields  map[string][]string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status the error is rendered with.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the JSON body for the error.
func (e *Error) Body() any {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	key := e.Key
	if key == "" {
		key = "error"
	}
	if e.Kind == KindInternal {
		return map[string]string{key: "internal server error"}
	}
	return map[string]string{key: e.Message}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationFields reports field-level validation failures.
func ValidationFields(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Field reports a single field failure rendered as {"<field>": "<msg>"}.
func Field(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Key: field}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg, Key: "errors"}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Key: "detail"}
}

// MissingMembership is the 400 returned when removing a pair that does not
// exist.
func MissingMembership(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found", Status: http.StatusBadRequest}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Key: "detail"}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg, Key: "detail"}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// From classifies err; unknown errors become KindInternal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

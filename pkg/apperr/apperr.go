// Package apperr defines the closed error taxonomy shared by all services.
// Handlers never inspect error strings; they map an *Error to a transport
// status through the single exhaustive switch in HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code int

const (
	CodeInvalid Code = iota + 1
	CodeUnauthorized
	CodeNotFound
	CodeInsufficientStock
	CodeEmptyCart
	CodeItemsUnavailable
	CodeUpstream
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeInvalid:
		return "invalid"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeNotFound:
		return "not_found"
	case CodeInsufficientStock:
		return "insufficient_stock"
	case CodeEmptyCart:
		return "empty_cart"
	case CodeItemsUnavailable:
		return "items_unavailable"
	case CodeUpstream:
		return "upstream"
	case CodeInternal:
		return "internal"
	}
	return "unknown"
}

// Error is the only error shape that crosses a handler boundary.
// Details holds extra keys merged into the error envelope (e.g. availableStock).
// UpstreamStatus is set only for CodeUpstream and propagates the collaborator's
// HTTP status.
type Error struct {
	Code           Code
	Message        string
	Details        map[string]any
	UpstreamStatus int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail attaches one extra response field and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// HTTPStatus is the single place a Code becomes a transport status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalid, CodeInsufficientStock, CodeEmptyCart, CodeItemsUnavailable:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		if e.UpstreamStatus > 0 {
			return e.UpstreamStatus
		}
		return http.StatusInternalServerError
	case CodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Invalid(message string) *Error {
	return &Error{Code: CodeInvalid, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "Internal server error", Err: err}
}

func Upstream(status int, message string, err error) *Error {
	return &Error{Code: CodeUpstream, Message: message, UpstreamStatus: status, Err: err}
}

// From normalizes any error to an *Error. Unknown errors become CodeInternal
// so unexpected failures never leak their message shape to clients.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Package errors defines the typed error codes shared by services and the
// HTTP layer. Services return *Error values; responses.WriteError turns the
// code into a status and a public message.
package errors

import (
	stdErrors "errors"
	"net/http"
	"strings"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is rendered to clients.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	// ClientFacing codes expose the typed message to the caller.
	ClientFacing bool
}

type trait uint8

const (
	retryable trait = 1 << iota
	withDetails
	clientFacing
)

func describe(status int, public string, traits trait) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      traits&retryable != 0,
		DetailsAllowed: traits&withDetails != 0,
		ClientFacing:   traits&clientFacing != 0,
	}
}

var registry = map[Code]Metadata{
	CodeValidation:   describe(http.StatusBadRequest, "validation failed", clientFacing|withDetails),
	CodeUnauthorized: describe(http.StatusUnauthorized, "unauthorized", clientFacing),
	CodeNotFound:     describe(http.StatusNotFound, "resource not found", clientFacing),
	CodeConflict:     describe(http.StatusConflict, "conflict detected", clientFacing),
	CodeIdempotency:  describe(http.StatusConflict, "idempotency key reused", clientFacing|withDetails),
	CodeRateLimit:    describe(http.StatusTooManyRequests, "rate limit exceeded", clientFacing),
	CodeInternal:     describe(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency:   describe(http.StatusServiceUnavailable, "dependency unavailable", clientFacing|retryable),
}

// MetadataFor returns the rendering rules for code. Unknown codes render as
// internal errors.
func MetadataFor(code Code) Metadata {
	if meta, ok := registry[code]; ok {
		return meta
	}
	return registry[CodeInternal]
}

// Error is a coded error with an optional cause and client details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets the payload rendered alongside codes that allow details.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{string(e.code), e.message}
	if e.cause != nil {
		parts = append(parts, e.cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the outermost typed code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	return As(err).Code()
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

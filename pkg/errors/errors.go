package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeInvalidPartnerCode   Code = "INVALID_PARTNER_CODE"
	CodeGateViolation        Code = "GATE_VIOLATION"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConflict             Code = "CONFLICT"
	CodeIdempotency          Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit            Code = "RATE_LIMIT_EXCEEDED"
	CodeSecurityCheck        Code = "SECURITY_CHECK_FAILED"
	CodePricingInconsistency Code = "PRICING_INCONSISTENCY"
	CodeInternal             Code = "INTERNAL_ERROR"
	CodeDependency           Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP. Retryable tells the client
// that resending the same request may succeed.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:           {http.StatusBadRequest, false, "validation failed", true},
	CodeInvalidPartnerCode:   {http.StatusUnprocessableEntity, false, "invalid partner code", true},
	CodeGateViolation:        {http.StatusUnprocessableEntity, false, "step transition not allowed", true},
	CodeUnauthorized:         {http.StatusUnauthorized, false, "booking session required", false},
	CodeNotFound:             {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:             {http.StatusConflict, true, "booking session is busy", false},
	CodeIdempotency:          {http.StatusConflict, false, "idempotency key reused", true},
	CodeRateLimit:            {http.StatusTooManyRequests, true, "rate limit exceeded", false},
	CodeSecurityCheck:        {http.StatusBadRequest, false, "security check failed", false},
	CodePricingInconsistency: {http.StatusInternalServerError, false, "internal server error", false},
	CodeInternal:             {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:           {http.StatusServiceUnavailable, true, "dependency unavailable", true},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
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

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given typed code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// FieldErrors builds a validation error whose details map field names to messages.
func FieldErrors(message string, fields map[string]string) *Error {
	return New(CodeValidation, message).WithDetails(fields)
}

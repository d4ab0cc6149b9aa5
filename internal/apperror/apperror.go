package apperror

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

type Kind string

const (
	KindInvalidInput      Kind = "InvalidInput"
	KindNotFound          Kind = "NotFound"
	KindInsufficientStock Kind = "InsufficientStock"
	KindAlreadyRefunded   Kind = "AlreadyRefunded"
	KindConflict          Kind = "Conflict"
	KindStoreUnavailable  Kind = "StoreUnavailable"
	KindTimeout           Kind = "Timeout"
	KindUnexpected        Kind = "Unexpected"
)

// SQLSTATE codes with a dedicated kind.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgCheckViolation       = "23514"
	pgNumericOutOfRange    = "22003"
)

// Error is a classified failure. Message is safe to show to callers; Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so errors.Is(err, apperror.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// Retryable reports whether the caller may safely repeat the request.
func (e *Error) Retryable() bool {
	return e.Kind == KindStoreUnavailable || e.Kind == KindTimeout
}

// HTTPStatus maps the kind onto the response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput, KindInsufficientStock, KindAlreadyRefunded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrAlreadyRefunded   = &Error{Kind: KindAlreadyRefunded}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrStoreUnavailable  = &Error{Kind: KindStoreUnavailable}
	ErrTimeout           = &Error{Kind: KindTimeout}
	ErrUnexpected        = &Error{Kind: KindUnexpected}
)

func New(kind Kind, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Message: msg, Cause: errors.New(msg)}
}

func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.WithStack(cause)}
}

func InvalidInput(format string, args ...interface{}) *Error {
	return New(KindInvalidInput, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func InsufficientStock(product string) *Error {
	return New(KindInsufficientStock, "Insufficient stock for product: %s", product)
}

func AlreadyRefunded() *Error {
	return New(KindAlreadyRefunded, "Sale already refunded")
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

// KindOf returns the kind of err after normalization.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

// From classifies any error. Already classified errors pass through unchanged.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTimeout, err, "The store did not respond in time, please retry")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(KindTimeout, err, "The request was cancelled")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(KindConflict, err, "Duplicate identifier")
		case pgSerializationFailure, pgDeadlockDetected:
			return Wrap(KindConflict, err, "Concurrent update, please retry")
		case pgCheckViolation, pgNumericOutOfRange:
			return Wrap(KindInvalidInput, err, "Value out of range")
		}
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return Wrap(KindStoreUnavailable, err, "The store is unavailable, please retry")
		}
		return Wrap(KindUnexpected, err, "internal server error")
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return Wrap(KindStoreUnavailable, err, "The store is unavailable, please retry")
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return Wrap(KindStoreUnavailable, err, "The store is unavailable, please retry")
	}
	return Wrap(KindUnexpected, err, "internal server error")
}

// Detail renders the cause with its stack, for diagnostic mode only.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.Cause)
}

// FromBinding turns a request decoding or validation failure into InvalidInput.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Wrap(KindInvalidInput, err, "Invalid request body")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return Wrap(KindInvalidInput, err, strings.Join(msgs, "; "))
}

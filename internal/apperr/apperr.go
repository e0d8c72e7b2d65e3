// Package apperr defines the error kinds shared by the portal functions and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindInvalidRequest     Kind = "invalid_request"
	KindServiceUnavailable Kind = "service_unavailable"
	KindUpstream           Kind = "upstream_error"
	KindInternal           Kind = "internal_error"
)

// Error is a classified error. Message is safe to return to callers; Err is
// kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, apperr.Forbidden)
// works against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinels for errors.Is comparisons.
var (
	Unauthorized       = &Error{Kind: KindUnauthorized}
	Forbidden          = &Error{Kind: KindForbidden}
	NotFound           = &Error{Kind: KindNotFound}
	InvalidRequest     = &Error{Kind: KindInvalidRequest}
	ServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	Upstream           = &Error{Kind: KindUpstream}
	Internal           = &Error{Kind: KindInternal}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewUnauthorized(message string) *Error { return New(KindUnauthorized, message) }

func NewForbidden(message string) *Error { return New(KindForbidden, message) }

func NewNotFound(message string) *Error { return New(KindNotFound, message) }

func NewInvalidRequest(message string) *Error { return New(KindInvalidRequest, message) }

func NewServiceUnavailable(message string) *Error {
	return New(KindServiceUnavailable, message)
}

func NewUpstream(message string, err error) *Error { return Wrap(KindUpstream, message, err) }

func NewInternal(err error) *Error { return Wrap(KindInternal, "Internal server error", err) }

// KindOf reports the kind of err, treating unclassified errors as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Status maps err onto the HTTP status the portal functions answer with.
// Only authentication and authorization failures get their own codes; every
// other failure is a 500.
func Status(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the caller-facing message for err. Unclassified
// errors never leak their text.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return "Internal server error"
}

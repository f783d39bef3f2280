package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies failures so the transport layer can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindExpired
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindExpired:
		return "expired"
	default:
		return "internal"
	}
}

// Error is the single error type returned by the services.
type Error struct {
	Kind    ErrorKind
	Message string
	// Fields maps offending request fields to a short reason. Only set for validation errors.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func ConflictError(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func AuthError(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func NotFoundError(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func ExpiredError(msg string) *Error    { return &Error{Kind: KindExpired, Message: msg} }

// InternalError wraps an unexpected failure from a collaborator.
func InternalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// MissingFields builds a validation error naming every missing field.
func MissingFields(fields ...string) *Error {
	sort.Strings(fields)
	details := make(map[string]string, len(fields))
	for _, f := range fields {
		details[f] = "is required"
	}
	return &Error{
		Kind:    KindValidation,
		Message: "missing required fields: " + strings.Join(fields, ", "),
		Fields:  details,
	}
}

// InvalidField builds a validation error for a single malformed field.
func InvalidField(field, reason string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s %s", field, reason),
		Fields:  map[string]string{field: reason},
	}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

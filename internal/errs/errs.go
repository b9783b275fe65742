// Package errs defines the tagged error kinds raised across the module
// subsystem (resolver, loader, manifest parser, fs and http built-ins).
//
// Every error surfaced to a Lua script carries one of these tags as a
// message prefix. Wrapping with fmt.Errorf("...: %w", err) still works
// as usual on the Go side; errors.As recovers the Kind.
package errs

import "fmt"

// Kind is a tag, not a type name. It identifies the category of failure
// an error belongs to.
type Kind string

const (
	ModuleNotFound      Kind = "ModuleNotFound"
	CircularDependency  Kind = "CircularDependency" // informational only, never raised
	InvalidManifest     Kind = "InvalidManifest"
	ExecutionError      Kind = "ExecutionError"
	CompileError        Kind = "CompileError"
	InvalidPath         Kind = "InvalidPath"
	NotFound            Kind = "NotFound"
	PermissionDenied    Kind = "PermissionDenied"
	AlreadyExists       Kind = "AlreadyExists"
	InvalidOperation    Kind = "InvalidOperation"
	InvalidUrl          Kind = "InvalidUrl"
	NetworkError        Kind = "NetworkError"
	TimeoutError        Kind = "TimeoutError"
	RequestError        Kind = "RequestError"
	JsonParseError      Kind = "JsonParseError"
	InvalidEncoding     Kind = "InvalidEncoding"
)

// Error is a tagged error. Its Error() string always starts with the tag.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// New builds a tagged error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a tagged error that wraps an underlying Go error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Is reports whether err carries the given Kind, including through %w chains.
func Is(err error, kind Kind) bool {
	for err != nil {
		if te, ok := err.(*Error); ok {
			if te.Kind == kind {
				return true
			}
			err = te.Wrapped
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

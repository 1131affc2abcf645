// Package snowerr defines the stable error kinds raised by the SnowFS
// engine. Callers distinguish kinds with errors.As, not string matching.
package snowerr

import "fmt"

// Kind tags an Error with one of the engine's stable error categories.
type Kind string

const (
	InvalidArgument           Kind = "invalid_argument"
	NotFound                  Kind = "not_found"
	AlreadyExists             Kind = "already_exists"
	Busy                      Kind = "busy"
	Corruption                Kind = "corruption"
	PermissionDenied          Kind = "permission_denied"
	UnrelatedHistories        Kind = "unrelated_histories"
	HashMismatch              Kind = "hash_mismatch"
	RepositoryBusy            Kind = "repository_busy"
	WouldOverwriteWorkingCopy Kind = "would_overwrite_working_copy"
	AggregateFileAccess       Kind = "aggregate_file_access"
	InternalIo                Kind = "internal_io"
)

// Error wraps a message and optional cause with a stable Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, snowerr.Sentinel(snowerr.NotFound)) work by
// comparing kinds when the target is an *Error with an empty message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

// New constructs an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an *Error of the given kind, wrapping an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinel returns a zero-message *Error usable with errors.Is to test for a
// kind: errors.Is(err, snowerr.Sentinel(snowerr.NotFound)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// AggregateFileAccessError collects one inner error per offending path, per
// the §4.5 contract for performFileAccessCheck.
type AggregateFileAccessError struct {
	Errors []error
}

func (a *AggregateFileAccessError) Error() string {
	if len(a.Errors) == 1 {
		return a.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d files failed access check:", len(a.Errors))
	for _, e := range a.Errors {
		msg += "\n  " + e.Error()
	}
	return msg
}

func (a *AggregateFileAccessError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == AggregateFileAccess && t.Msg == ""
}

func (a *AggregateFileAccessError) Unwrap() []error { return a.Errors }

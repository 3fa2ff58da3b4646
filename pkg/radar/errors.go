// Package radar defines the shared surface of the ingestion pipeline: the
// closed error taxonomy and the tabular payload exchanged between source
// collaborators and the resolver.
package radar

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates the identifier resolves to no existing resource.
// Terminal for the current load; authentication is never attempted for it.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrForbidden indicates an authenticated read was denied. Recoverable by
// switching to a different account.
var ErrForbidden = errors.New("access forbidden")

// ErrLoginFailed indicates the identity provider did not produce an identity.
var ErrLoginFailed = errors.New("login failed")

// MalformedDataError reports a header, shape, or ring-count violation in the
// source data. Always recoverable by the user editing their source.
type MalformedDataError struct {
	Reason string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed data: %s", e.Reason)
}

// NewMalformedDataError creates a MalformedDataError with a formatted reason.
func NewMalformedDataError(format string, args ...interface{}) *MalformedDataError {
	return &MalformedDataError{Reason: fmt.Sprintf(format, args...)}
}

// SourceError wraps any other remote-read failure with its source context.
// It is logged internally and surfaces to the user as a generic message only.
type SourceError struct {
	Source string // "csv", "json", "workbook", "google_sheet"
	Op     string // "fetch", "metadata", "values"
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source error in %s (%s): %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, op string, err error) *SourceError {
	return &SourceError{Source: source, Op: op, Err: err}
}

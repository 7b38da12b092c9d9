// SPDX-License-Identifier: MIT

package tntp

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks failures to open, read or write a file.
	ErrIO = errors.New("tntp: I/O failure")

	// ErrFormatViolation marks a line that does not match the TNTP grammar.
	ErrFormatViolation = errors.New("tntp: format violation")

	// ErrNegativeDemand is returned by DemandMatrix.Set for values below zero.
	ErrNegativeDemand = errors.New("tntp: negative demand")

	// ErrUnknownZone is returned by DemandMatrix accessors for ids outside 1..NumZones.
	ErrUnknownZone = errors.New("tntp: zone id out of range")
)

// FormatError reports the offending line of a malformed file.
// Line is 1-based; Content is the raw line as read.
type FormatError struct {
	Path    string
	Line    int
	Content string
	Reason  string
}

func (e *FormatError) Error() string {
	src := e.Path
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("tntp: %s:%d: %s: %q", src, e.Line, e.Reason, e.Content)
}

// Unwrap lets errors.Is(err, ErrFormatViolation) succeed.
func (e *FormatError) Unwrap() error { return ErrFormatViolation }

// IOError wraps an underlying filesystem or reader error.
type IOError struct {
	Op   string // "open", "read", "write", "close"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("tntp: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrIO and the cause, so errors.Is(err, fs.ErrNotExist) works too.
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

func formatErrorf(line int, content, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Content: content, Reason: fmt.Sprintf(format, args...)}
}

// withPath stamps path onto a *FormatError or *IOError produced by a reader
// that only saw an io.Reader.
func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = path
	}
	var ie *IOError
	if errors.As(err, &ie) && ie.Path == "" {
		ie.Path = path
	}
	return err
}

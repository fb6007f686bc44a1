/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package errors provides error wrapping utilities and the error taxonomy
// shared by the lockfile generator and the manifest list publisher.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure so callers can decide whether it is worth
// retrying or must be surfaced immediately.
type Kind int

// Failure kinds.
const (
	// KindUnknown is reported for errors that did not originate here.
	KindUnknown Kind = iota
	// KindConfiguration means the inputs violate an invariant that no
	// amount of retrying can fix.
	KindConfiguration
	// KindExternalTool means the registry tool exited nonzero.
	KindExternalTool
	// KindUnexpectedOutput means the tool succeeded but its output could
	// not be interpreted.
	KindUnexpectedOutput
	// KindLookup means well-formed output lacked the expected data.
	KindLookup
	// KindIO covers local file system failures.
	KindIO
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindExternalTool:
		return "external-tool"
	case KindUnexpectedOutput:
		return "unexpected-output"
	case KindLookup:
		return "lookup"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Output holds the captured subprocess
// output, if any, verbatim.
type Error struct {
	Kind   Kind
	Msg    string
	Output string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Output != "" {
		b.WriteString("\n")
		b.WriteString(e.Output)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a classified error with the given message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WithOutput attaches captured tool output to the error.
func (e *Error) WithOutput(output string) *Error {
	e.Output = output
	return e
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Wrap wraps an error with a descriptive action and optional detail.
// It returns a formatted error in the form "failed to <action> [(<detail>)]: <error>".
//
// Example usage:
//
//	if err := lf.Write(path); err != nil {
//	    return errors.Wrap("write lockfile", path, err)
//	}
func Wrap(action, detail string, err error) error {
	if err == nil {
		return nil
	}

	if detail != "" {
		return fmt.Errorf("failed to %s (%s): %w", action, detail, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

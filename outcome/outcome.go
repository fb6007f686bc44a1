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

// Package outcome models the three ways a pipeline step can end: it had
// nothing to do, it produced a value, or it failed with a classified error.
package outcome

import (
	"fmt"

	"github.com/cowdogmoo/archpin/errors"
)

// Status is the variant of an Outcome.
type Status int

// Outcome variants.
const (
	Skipped Status = iota + 1
	Succeeded
	Failed
)

// String returns the lower-case variant name.
func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome is the result of a step. Exactly one of Reason (Skipped),
// Value (Succeeded) or Err (Failed) is meaningful.
type Outcome[T any] struct {
	Status Status
	Value  T
	Reason string
	Err    error
}

// Skip reports that there was nothing to do. It is not a failure.
func Skip[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: Skipped, Reason: reason}
}

// OK wraps a successful value.
func OK[T any](value T) Outcome[T] {
	return Outcome[T]{Status: Succeeded, Value: value}
}

// Fail wraps an error. A nil error is a programming mistake and panics.
func Fail[T any](err error) Outcome[T] {
	if err == nil {
		panic("outcome: Fail called with nil error")
	}
	return Outcome[T]{Status: Failed, Err: err}
}

// Skipped reports whether the step short-circuited.
func (o Outcome[T]) Skipped() bool { return o.Status == Skipped }

// Succeeded reports whether the step produced a value.
func (o Outcome[T]) Succeeded() bool { return o.Status == Succeeded }

// Failed reports whether the step failed.
func (o Outcome[T]) Failed() bool { return o.Status == Failed }

// Kind returns the failure kind, or errors.KindUnknown when the step did
// not fail.
func (o Outcome[T]) Kind() errors.Kind {
	if o.Status != Failed {
		return errors.KindUnknown
	}
	return errors.KindOf(o.Err)
}

// Unwrap converts the outcome back to the (value, error) convention. A
// skipped outcome returns the zero value and a nil error.
func (o Outcome[T]) Unwrap() (T, error) {
	return o.Value, o.Err
}

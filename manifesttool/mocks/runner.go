// Package mocks provides a scriptable manifesttool.Runner for tests.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/cowdogmoo/archpin/manifesttool"
)

// Response is one scripted reply.
type Response struct {
	Result manifesttool.Result
	Err    error
}

// Runner replays Responses in order and records every invocation. Once the
// script is exhausted the last response repeats.
type Runner struct {
	mu        sync.Mutex
	responses []Response
	calls     []manifesttool.Invocation
}

// NewRunner returns a Runner scripted with responses.
func NewRunner(responses ...Response) *Runner {
	return &Runner{responses: responses}
}

// Exit is shorthand for a response with the given exit code and stdout.
func Exit(code int, stdout string) Response {
	return Response{Result: manifesttool.Result{ExitCode: code, Stdout: stdout}}
}

// Run implements manifesttool.Runner.
func (r *Runner) Run(_ context.Context, inv manifesttool.Invocation) (manifesttool.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, inv)
	if len(r.responses) == 0 {
		return manifesttool.Result{}, fmt.Errorf("mocks: no response scripted for %v", inv.Args)
	}

	idx := len(r.calls) - 1
	if idx >= len(r.responses) {
		idx = len(r.responses) - 1
	}
	resp := r.responses[idx]
	return resp.Result, resp.Err
}

// Calls returns a copy of the recorded invocations.
func (r *Runner) Calls() []manifesttool.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]manifesttool.Invocation, len(r.calls))
	copy(out, r.calls)
	return out
}

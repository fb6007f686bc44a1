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

// Package manifesttool drives the external manifest-tool executable and
// interprets what it prints.
//
// The tool is run with an explicit environment: nothing from the calling
// process leaks into it except HOME, and only when an invocation asks for
// it. A nonzero exit status is never an error at this layer; callers get
// the exit code and the captured output and decide what it means.
package manifesttool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/cowdogmoo/archpin/logging"
)

// DefaultExecutable is looked up on PATH when no explicit path is configured.
const DefaultExecutable = "manifest-tool"

// Invocation describes one run of the tool.
type Invocation struct {
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env holds explicit variables for the subprocess.
	Env map[string]string
	// PropagateHome forwards HOME so the tool can find its credential cache.
	PropagateHome bool
}

// Result is what a finished invocation produced.
type Result struct {
	ExitCode int
	// Stdout is trimmed of surrounding whitespace.
	Stdout string
	Stderr string
}

// Success reports whether the tool exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Output returns stdout, followed by stderr when there is any, for
// attaching to error reports.
func (r Result) Output() string {
	stderr := strings.TrimSpace(r.Stderr)
	switch {
	case stderr == "":
		return r.Stdout
	case r.Stdout == "":
		return stderr
	default:
		return r.Stdout + "\n" + stderr
	}
}

// Runner runs the tool. It returns an error only if the process could not
// be run at all; a nonzero exit is reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// Exec is a Runner backed by os/exec.
type Exec struct {
	path    string
	homeDir func() (string, error)
}

// NewExec returns a Runner for the executable at path. An empty path
// selects DefaultExecutable from PATH.
func NewExec(path string) *Exec {
	if path == "" {
		path = DefaultExecutable
	}
	return &Exec{path: path, homeDir: os.UserHomeDir}
}

// Path returns the executable the runner invokes.
func (e *Exec) Path() string {
	return e.path
}

// Run executes the tool and buffers its output in full; manifest-tool
// prints small payloads.
func (e *Exec) Run(ctx context.Context, inv Invocation) (Result, error) {
	env, err := e.environment(inv)
	if err != nil {
		return Result{}, err
	}

	logging.DebugContext(ctx, "Running %s %s", e.path, strings.Join(inv.Args, " "))

	cmd := exec.CommandContext(ctx, e.path, inv.Args...) //nolint:gosec // the executable is configured by the operator
	cmd.Dir = inv.Dir
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: stderr.String(),
	}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("failed to run %s: %w", e.path, runErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	logging.DebugContext(ctx, "%s exited with %d", e.path, result.ExitCode)
	if out := result.Output(); out != "" {
		logging.DebugContext(ctx, "%s output:\n%s", e.path, logging.RedactSensitivePatterns(out))
	}
	return result, nil
}

// environment builds the subprocess environment from scratch. The result
// is never nil: a nil Env would make os/exec inherit the parent's.
func (e *Exec) environment(inv Invocation) ([]string, error) {
	vars := make(map[string]string, len(inv.Env)+1)
	if inv.PropagateHome {
		home, err := e.homeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		vars["HOME"] = home
	}
	for k, v := range inv.Env {
		vars[k] = v
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}

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

package manifesttool

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cowdogmoo/archpin/logging"
)

// Tool exposes the manifest-tool subcommands archpin relies on.
type Tool struct {
	runner Runner
	env    map[string]string
}

// Option configures a Tool.
type Option func(*Tool)

// WithEnv adds explicit environment variables to every invocation.
func WithEnv(env map[string]string) Option {
	return func(t *Tool) {
		t.env = env
	}
}

// New returns a Tool running commands through runner.
func New(runner Runner, opts ...Option) *Tool {
	t := &Tool{runner: runner}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PushArgs are the arguments of `push from-args`.
type PushArgs struct {
	// Platforms are os/arch strings, in the order they should be listed.
	Platforms []string
	// Template is an image reference containing the ARCH placeholder.
	Template string
	// Target is the tag the manifest list is pushed to.
	Target string
}

// InspectRaw runs `inspect --raw <reference>`. HOME is forwarded so the
// tool can read registry credentials.
func (t *Tool) InspectRaw(ctx context.Context, reference string) (Result, error) {
	return t.run(ctx, Invocation{
		Args:          []string{"inspect", "--raw", reference},
		PropagateHome: true,
	})
}

// PushFromArgs runs `push from-args` with an otherwise empty environment.
func (t *Tool) PushFromArgs(ctx context.Context, args PushArgs) (Result, error) {
	return t.run(ctx, Invocation{
		Args: []string{
			"push", "from-args",
			"--platforms", strings.Join(args.Platforms, ","),
			"--template", args.Template,
			"--target", args.Target,
		},
	})
}

// Version runs `--version` and parses the reported version.
func (t *Tool) Version(ctx context.Context) (*semver.Version, error) {
	res, err := t.run(ctx, Invocation{Args: []string{"--version"}})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("manifest-tool --version exited with %d: %s", res.ExitCode, res.Output())
	}
	return ParseVersion(res.Output())
}

// CheckVersion fails unless the installed tool satisfies constraint, e.g.
// ">= 2.0.0". An empty constraint accepts any version.
func (t *Tool) CheckVersion(ctx context.Context, constraint string) error {
	if constraint == "" {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	v, err := t.Version(ctx)
	if err != nil {
		return err
	}

	if !c.Check(v) {
		return fmt.Errorf("manifest-tool %s does not satisfy %q", v, constraint)
	}
	logging.DebugContext(ctx, "manifest-tool %s satisfies %q", v, constraint)
	return nil
}

func (t *Tool) run(ctx context.Context, inv Invocation) (Result, error) {
	if len(t.env) > 0 {
		env := make(map[string]string, len(t.env))
		for k, v := range t.env {
			env[k] = v
			logging.DebugContext(ctx, "manifest-tool env %s=%s", k, logging.RedactSensitiveValue(k, v))
		}
		inv.Env = env
	}
	return t.runner.Run(ctx, inv)
}

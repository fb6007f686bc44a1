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

// Package publish combines per-architecture images that were already pushed
// into one multi-architecture manifest list and records its digest.
package publish

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/cowdogmoo/archpin/manifesttool"
	"github.com/cowdogmoo/archpin/outcome"
	"github.com/cowdogmoo/archpin/retry"
	"github.com/opencontainers/go-digest"
)

// Request describes one manifest list push.
type Request struct {
	// ArchitectureTags maps each architecture to its already-pushed image.
	ArchitectureTags map[arch.Architecture]string
	// Target is the tag the manifest list is published under.
	Target string
	// DigestFile receives the manifest list digest.
	DigestFile string
}

// Publisher pushes manifest lists through manifest-tool.
type Publisher struct {
	Tool  *manifesttool.Tool
	Retry retry.Config
}

// New returns a Publisher with the default retry policy.
func New(tool *manifesttool.Tool) *Publisher {
	return &Publisher{Tool: tool, Retry: retry.DefaultPublishConfig()}
}

// Publish derives the template, pushes the manifest list with retries and
// writes its digest to req.DigestFile.
//
// Any nonzero exit of the push is retried. Output from a successful push
// that cannot be parsed is never retried, since the registry already holds
// the manifest list.
func (p *Publisher) Publish(ctx context.Context, req Request) outcome.Outcome[digest.Digest] {
	if req.Target == "" {
		return outcome.Fail[digest.Digest](errors.New(errors.KindConfiguration, "no target tag given"))
	}
	if req.DigestFile == "" {
		return outcome.Fail[digest.Digest](errors.New(errors.KindConfiguration, "no digest file given"))
	}

	template, err := DeriveTemplate(req.ArchitectureTags)
	if err != nil {
		return outcome.Fail[digest.Digest](err)
	}

	archs := make([]arch.Architecture, 0, len(req.ArchitectureTags))
	for a := range req.ArchitectureTags {
		archs = append(archs, a)
	}
	arch.Sort(archs)
	platforms := make([]string, 0, len(archs))
	for _, a := range archs {
		platforms = append(platforms, a.PlatformString())
	}

	args := manifesttool.PushArgs{Platforms: platforms, Template: template, Target: req.Target}
	logging.InfoContext(ctx, "Creating manifest list %s from %s for %v", req.Target, template, platforms)

	res, err := retry.Do(ctx, p.retryConfig(ctx), func() (manifesttool.Result, error) {
		return p.push(ctx, args)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
			return outcome.Fail[digest.Digest](
				errors.New(errors.KindExternalTool, "creating the manifest list was cancelled").WithCause(err))
		}
		return outcome.Fail[digest.Digest](err)
	}

	d, err := manifesttool.ParsePushDigest(res.Stdout)
	switch {
	case stderrors.Is(err, manifesttool.ErrNoOutput):
		return outcome.Fail[digest.Digest](
			errors.New(errors.KindUnexpectedOutput, "creating the manifest list succeeded but produced no output"))
	case err != nil:
		return outcome.Fail[digest.Digest](
			errors.Newf(errors.KindUnexpectedOutput,
				"creating the manifest list succeeded but produced unexpected output: `%s`", res.Stdout))
	}

	if err := WriteDigestFile(req.DigestFile, d); err != nil {
		return outcome.Fail[digest.Digest](
			errors.Newf(errors.KindIO, "failed to record manifest list digest (%s)", req.DigestFile).WithCause(err))
	}

	logging.InfoContext(ctx, "Published %s@%s", req.Target, d)
	return outcome.OK(d)
}

// push runs one attempt. A tool that cannot be started is not retried.
func (p *Publisher) push(ctx context.Context, args manifesttool.PushArgs) (manifesttool.Result, error) {
	res, err := p.Tool.PushFromArgs(ctx, args)
	if err != nil {
		return res, retry.Permanent(
			errors.New(errors.KindExternalTool, "failed to run manifest-tool push").WithCause(err))
	}
	if !res.Success() {
		return res, errors.Newf(errors.KindExternalTool, "creating the manifest list failed (exit code %d)", res.ExitCode).
			WithOutput(res.Output())
	}
	return res, nil
}

// retryConfig returns p.Retry, or the default publish policy when no attempts
// are configured. A Timer or OnRetry set on p.Retry is kept either way.
func (p *Publisher) retryConfig(ctx context.Context) retry.Config {
	cfg := p.Retry
	if cfg.MaxAttempts == 0 {
		def := retry.DefaultPublishConfig()
		def.OnRetry, def.Timer = cfg.OnRetry, cfg.Timer
		cfg = def
	}
	if cfg.OnRetry == nil {
		maxAttempts := cfg.MaxAttempts
		cfg.OnRetry = func(attempt int, err error, next time.Duration) {
			logging.WarnContext(ctx, "Attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, next, err)
		}
	}
	return cfg
}

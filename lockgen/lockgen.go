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

// Package lockgen resolves the upstream base image a pipeline declares into
// per-architecture digests and records them in a lockfile.
//
// Generation always queries the registry: the manifest list behind a tag can
// change at any time, so callers must never skip a run because the inputs
// look unchanged.
package lockgen

import (
	"context"
	"strings"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/instructions"
	"github.com/cowdogmoo/archpin/lockfile"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/cowdogmoo/archpin/manifesttool"
	"github.com/cowdogmoo/archpin/outcome"
	"github.com/opencontainers/go-digest"
	"go.podman.io/image/v5/docker/reference"
)

// Generator pins base images through manifest-tool.
type Generator struct {
	Tool *manifesttool.Tool
}

// New returns a Generator using tool.
func New(tool *manifesttool.Tool) *Generator {
	return &Generator{Tool: tool}
}

// Generate inspects the single upstream reference declared in set and
// writes the resulting lockfile to outPath, replacing any previous
// content. It is skipped when no architecture declares a From step.
func (g *Generator) Generate(ctx context.Context, set instructions.Set, outPath string) outcome.Outcome[*lockfile.Lockfile] {
	ref, err := upstreamReference(set)
	if err != nil {
		return outcome.Fail[*lockfile.Lockfile](err)
	}
	if ref == "" {
		logging.InfoContext(ctx, "No static base image declared, nothing to lock")
		return outcome.Skip[*lockfile.Lockfile]("no static base image declared")
	}

	repository, tag, err := SplitReference(ref)
	if err != nil {
		return outcome.Fail[*lockfile.Lockfile](err)
	}

	logging.InfoContext(ctx, "Inspecting manifest list for %s", ref)
	res, err := g.Tool.InspectRaw(ctx, ref)
	if err != nil {
		return outcome.Fail[*lockfile.Lockfile](
			errors.Newf(errors.KindExternalTool, "failed to run manifest-tool inspect for %s", ref).WithCause(err))
	}
	if !res.Success() {
		return outcome.Fail[*lockfile.Lockfile](
			errors.Newf(errors.KindExternalTool, "manifest inspection failed for %s (exit code %d)", ref, res.ExitCode).
				WithOutput(res.Output()))
	}

	digests, err := parseDigests(ctx, ref, res.Stdout)
	if err != nil {
		return outcome.Fail[*lockfile.Lockfile](err)
	}

	images := make(map[arch.Architecture]lockfile.PinnedImageReference, len(digests))
	for a, d := range digests {
		images[a] = lockfile.PinnedImageReference{Repository: repository, Tag: tag, Digest: d}
	}

	lf, err := lockfile.New(images)
	if err != nil {
		return outcome.Fail[*lockfile.Lockfile](
			errors.New(errors.KindUnexpectedOutput, "inspect output produced an invalid lockfile").WithCause(err))
	}

	if err := lf.Write(outPath); err != nil {
		return outcome.Fail[*lockfile.Lockfile](
			errors.Newf(errors.KindIO, "failed to write lockfile (%s)", outPath).WithCause(err))
	}

	for _, a := range lf.Architectures() {
		pin, _ := lf.Get(a)
		logging.DebugContext(ctx, "Pinned %s to %s", a, pin)
	}
	logging.InfoContext(ctx, "Wrote lockfile %s with %d architectures", outPath, len(images))
	return outcome.OK(lf)
}

// upstreamReference returns the one reference every From step agrees on,
// or "" when there are none.
func upstreamReference(set instructions.Set) (string, error) {
	refs := set.DistinctFromReferences()
	if len(refs) == 0 {
		return "", nil
	}

	for _, ref := range refs {
		if strings.Contains(ref, "@") {
			return "", errors.Newf(errors.KindConfiguration,
				"base image %s already contains a digest; declare the tag and let the lockfile pin it", ref)
		}
	}

	if len(refs) > 1 {
		return "", errors.Newf(errors.KindConfiguration,
			"expected a single multi-arch base image tag across all architectures, found %d: %s",
			len(refs), strings.Join(refs, ", "))
	}
	return refs[0], nil
}

// SplitReference validates ref as a tagged docker reference and splits it
// into repository and tag. It splits at the tag separator, the last colon,
// rather than the first one, so a registry port survives:
// "localhost:5000/img:1.0" yields "localhost:5000/img" and "1.0". The
// repository is kept as written, without docker.io normalization.
func SplitReference(ref string) (repository, tag string, err error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", "", errors.Newf(errors.KindConfiguration, "invalid image reference %q", ref).WithCause(err)
	}
	if _, ok := named.(reference.Digested); ok {
		return "", "", errors.Newf(errors.KindConfiguration, "image reference %s already contains a digest", ref)
	}
	tagged, ok := named.(reference.Tagged)
	if !ok {
		return "", "", errors.Newf(errors.KindConfiguration, "image reference %s has no tag", ref)
	}

	tag = tagged.Tag()
	return strings.TrimSuffix(ref, ":"+tag), tag, nil
}

// parseDigests maps inspect output to one digest per recognized
// architecture. Unrecognized architectures are skipped and a later entry
// for the same architecture replaces an earlier one.
func parseDigests(ctx context.Context, ref, output string) (map[arch.Architecture]digest.Digest, error) {
	entries, err := manifesttool.ParseInspectRaw(output)
	if err != nil {
		return nil, errors.Newf(errors.KindUnexpectedOutput, "could not parse manifest-tool inspect output for %s", ref).
			WithCause(err).WithOutput(output)
	}

	digests := make(map[arch.Architecture]digest.Digest, len(entries))
	for _, entry := range entries {
		a, ok := arch.FromDockerName(entry.Architecture)
		if !ok {
			logging.DebugContext(ctx, "Ignoring %s entry %s for unsupported architecture %q", ref, entry.Digest, entry.Architecture)
			continue
		}
		if err := lockfile.ValidateDigest(entry.Digest); err != nil {
			return nil, errors.Newf(errors.KindUnexpectedOutput, "manifest-tool reported a malformed digest for %s on %s", ref, a).
				WithCause(err).WithOutput(output)
		}
		digests[a] = entry.Digest
	}

	if len(digests) == 0 {
		return nil, errors.Newf(errors.KindLookup, "could not identify digests for `%s`", ref).WithOutput(output)
	}
	return digests, nil
}

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

package lockgen_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/instructions"
	"github.com/cowdogmoo/archpin/lockfile"
	"github.com/cowdogmoo/archpin/lockgen"
	"github.com/cowdogmoo/archpin/manifesttool"
	"github.com/cowdogmoo/archpin/manifesttool/mocks"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hexA = strings.Repeat("a", 64)
	hexB = strings.Repeat("b", 64)
	hexC = strings.Repeat("c", 64)
)

const upstream = "registry/example:1.0"

func inspectOutput() string {
	return `[{"Architecture":"amd64","Digest":"sha256:` + hexA + `"},` +
		`{"Architecture":"arm64","Digest":"sha256:` + hexB + `"},` +
		`{"Architecture":"unknown","Digest":"sha256:` + hexC + `"}]`
}

func fromEverywhere(ref string) instructions.Set {
	return instructions.Set{
		arch.X86_64:  {instructions.From{Reference: ref}, instructions.Run{Commands: []string{"make"}}},
		arch.AARCH64: {instructions.From{Reference: ref}},
	}
}

func newGenerator(responses ...mocks.Response) (*lockgen.Generator, *mocks.Runner) {
	runner := mocks.NewRunner(responses...)
	return lockgen.New(manifesttool.New(runner)), runner
}

func TestGeneratePinsRecognizedArchitectures(t *testing.T) {
	t.Parallel()

	gen, runner := newGenerator(mocks.Exit(0, inspectOutput()))
	out := filepath.Join(t.TempDir(), "archpin.lock.yaml")

	result := gen.Generate(context.Background(), fromEverywhere(upstream), out)
	require.True(t, result.Succeeded(), "unexpected outcome: %v", result.Err)

	want := map[arch.Architecture]lockfile.PinnedImageReference{
		arch.X86_64:  {Repository: "registry/example", Tag: "1.0", Digest: digest.Digest("sha256:" + hexA)},
		arch.AARCH64: {Repository: "registry/example", Tag: "1.0", Digest: digest.Digest("sha256:" + hexB)},
	}
	assert.Equal(t, want, result.Value.Images)

	written, err := lockfile.Read(out)
	require.NoError(t, err)
	assert.Equal(t, want, written.Images)

	calls := runner.Calls()
	require.Len(t, calls, 1, "inspection is never retried")
	assert.Equal(t, []string{"inspect", "--raw", upstream}, calls[0].Args)
	assert.True(t, calls[0].PropagateHome)
}

func TestGenerateSkipsWithoutFromSteps(t *testing.T) {
	t.Parallel()

	gen, runner := newGenerator(mocks.Exit(0, inspectOutput()))
	out := filepath.Join(t.TempDir(), "archpin.lock.yaml")

	set := instructions.Set{
		arch.X86_64: {instructions.Run{Commands: []string{"make"}}},
	}
	result := gen.Generate(context.Background(), set, out)
	assert.True(t, result.Skipped())
	assert.NoError(t, result.Err)
	assert.NotEmpty(t, result.Reason)
	assert.Empty(t, runner.Calls())
	assert.NoFileExists(t, out)
}

func TestGenerateConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		set     instructions.Set
		wantErr string
	}{
		{
			name:    "digest already present",
			set:     fromEverywhere("registry/example:1.0@sha256:" + hexA),
			wantErr: "already contains a digest",
		},
		{
			name: "per-architecture tags",
			set: instructions.Set{
				arch.X86_64:  {instructions.From{Reference: "registry/example:1.0-amd64"}},
				arch.AARCH64: {instructions.From{Reference: "registry/example:1.0-arm64"}},
			},
			wantErr: "registry/example:1.0-amd64, registry/example:1.0-arm64",
		},
		{
			name:    "no tag",
			set:     fromEverywhere("registry/example"),
			wantErr: "has no tag",
		},
		{
			name:    "malformed reference",
			set:     fromEverywhere("Registry/Example:1.0"),
			wantErr: "invalid image reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen, runner := newGenerator(mocks.Exit(0, inspectOutput()))
			out := filepath.Join(t.TempDir(), "archpin.lock.yaml")

			result := gen.Generate(context.Background(), tt.set, out)
			require.True(t, result.Failed())
			assert.Equal(t, errors.KindConfiguration, result.Kind())
			assert.ErrorContains(t, result.Err, tt.wantErr)
			assert.Empty(t, runner.Calls(), "configuration errors are raised before inspecting")
		})
	}
}

func TestGenerateToolFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response mocks.Response
		wantKind errors.Kind
		wantErr  string
	}{
		{
			name:     "inspect exits nonzero",
			response: mocks.Exit(1, "manifest unknown"),
			wantKind: errors.KindExternalTool,
			wantErr:  "manifest inspection failed",
		},
		{
			name:     "tool cannot start",
			response: mocks.Response{Err: stderrors.New("exec: \"manifest-tool\": executable file not found")},
			wantKind: errors.KindExternalTool,
			wantErr:  "executable file not found",
		},
		{
			name:     "no recognized architectures",
			response: mocks.Exit(0, `[{"Architecture":"unknown","Digest":"sha256:`+hexC+`"}]`),
			wantKind: errors.KindLookup,
			wantErr:  "could not identify digests for `registry/example:1.0`",
		},
		{
			name:     "empty list",
			response: mocks.Exit(0, "[]"),
			wantKind: errors.KindLookup,
			wantErr:  "could not identify digests",
		},
		{
			name:     "not json",
			response: mocks.Exit(0, "Name: registry/example:1.0"),
			wantKind: errors.KindUnexpectedOutput,
			wantErr:  "could not parse",
		},
		{
			name:     "malformed digest for known architecture",
			response: mocks.Exit(0, `[{"Architecture":"amd64","Digest":"sha256:abc"}]`),
			wantKind: errors.KindUnexpectedOutput,
			wantErr:  "malformed digest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen, _ := newGenerator(tt.response)
			out := filepath.Join(t.TempDir(), "archpin.lock.yaml")

			result := gen.Generate(context.Background(), fromEverywhere(upstream), out)
			require.True(t, result.Failed())
			assert.Equal(t, tt.wantKind, result.Kind())
			assert.ErrorContains(t, result.Err, tt.wantErr)
			assert.NoFileExists(t, out)
		})
	}
}

func TestGenerateAttachesToolOutput(t *testing.T) {
	t.Parallel()

	gen, _ := newGenerator(mocks.Exit(1, "unauthorized: authentication required"))
	result := gen.Generate(context.Background(), fromEverywhere(upstream), filepath.Join(t.TempDir(), "lock.yaml"))
	require.True(t, result.Failed())

	var classified *errors.Error
	require.True(t, stderrors.As(result.Err, &classified))
	assert.Equal(t, "unauthorized: authentication required", classified.Output)
	assert.Contains(t, result.Err.Error(), "unauthorized: authentication required")
}

func TestGenerateLastDuplicateWins(t *testing.T) {
	t.Parallel()

	output := `[{"Architecture":"amd64","Digest":"sha256:` + hexA + `"},` +
		`{"Architecture":"amd64","Digest":"sha256:` + hexB + `"}]`
	gen, _ := newGenerator(mocks.Exit(0, output))

	result := gen.Generate(context.Background(), fromEverywhere(upstream), filepath.Join(t.TempDir(), "lock.yaml"))
	require.True(t, result.Succeeded())
	pin, ok := result.Value.Get(arch.X86_64)
	require.True(t, ok)
	assert.Equal(t, digest.Digest("sha256:"+hexB), pin.Digest)
}

func TestGenerateOverwritesPreviousLockfile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "archpin.lock.yaml")
	require.NoError(t, os.WriteFile(out, []byte("images: {}\n# stale\n"), 0644))

	gen, runner := newGenerator(mocks.Exit(0, inspectOutput()))
	result := gen.Generate(context.Background(), fromEverywhere(upstream), out)
	require.True(t, result.Succeeded())
	assert.Len(t, runner.Calls(), 1, "an existing lockfile never short-circuits inspection")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestSplitReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref      string
		wantRepo string
		wantTag  string
		wantErr  bool
	}{
		{ref: "registry/example:1.0", wantRepo: "registry/example", wantTag: "1.0"},
		{ref: "ubuntu:22.04", wantRepo: "ubuntu", wantTag: "22.04"},
		{ref: "localhost:5000/img:1.0", wantRepo: "localhost:5000/img", wantTag: "1.0"},
		{ref: "localhost:5000/team/base:latest", wantRepo: "localhost:5000/team/base", wantTag: "latest"},
		{ref: "ghcr.io/org/image:v1.2.3-amd64", wantRepo: "ghcr.io/org/image", wantTag: "v1.2.3-amd64"},
		{ref: "localhost:5000/team/base", wantErr: true},
		{ref: "ubuntu", wantErr: true},
		{ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()
			repo, tag, err := lockgen.SplitReference(tt.ref)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.KindConfiguration), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRepo, repo)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}

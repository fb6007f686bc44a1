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
	"path/filepath"
	"testing"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/instructions"
	"github.com/cowdogmoo/archpin/lockgen"
	"github.com/cowdogmoo/archpin/manifesttool/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAll(t *testing.T) {
	t.Parallel()

	gen, runner := newGenerator(mocks.Exit(0, inspectOutput()))
	dir := t.TempDir()

	jobs := []lockgen.Job{
		{Name: "base", Instructions: fromEverywhere(upstream), Output: filepath.Join(dir, "base.lock.yaml")},
		{Name: "tools", Instructions: instructions.Set{arch.X86_64: {instructions.User{Name: "app"}}}, Output: filepath.Join(dir, "tools.lock.yaml")},
		{Name: "broken", Instructions: fromEverywhere("registry/example"), Output: filepath.Join(dir, "broken.lock.yaml")},
		{Name: "runtime", Instructions: fromEverywhere(upstream), Output: filepath.Join(dir, "runtime.lock.yaml")},
	}

	results, err := gen.GenerateAll(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		assert.Equal(t, jobs[i].Name, r.Job.Name, "results keep job order")
	}
	assert.True(t, results[0].Outcome.Succeeded())
	assert.True(t, results[1].Outcome.Skipped())
	assert.True(t, results[2].Outcome.Failed())
	assert.Equal(t, errors.KindConfiguration, results[2].Outcome.Kind())
	assert.True(t, results[3].Outcome.Succeeded())

	assert.Len(t, runner.Calls(), 2)
	assert.FileExists(t, jobs[0].Output)
	assert.FileExists(t, jobs[3].Output)
}

func TestGenerateAllRejectsSharedOutput(t *testing.T) {
	t.Parallel()

	gen, runner := newGenerator(mocks.Exit(0, inspectOutput()))
	out := filepath.Join(t.TempDir(), "archpin.lock.yaml")

	_, err := gen.GenerateAll(context.Background(), []lockgen.Job{
		{Name: "a", Instructions: fromEverywhere(upstream), Output: out},
		{Name: "b", Instructions: fromEverywhere(upstream), Output: out + "/."},
	}, 0)
	assert.True(t, errors.Is(err, errors.KindConfiguration))
	assert.ErrorContains(t, err, `jobs "a" and "b"`)
	assert.Empty(t, runner.Calls())
}

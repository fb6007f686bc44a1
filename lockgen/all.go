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

package lockgen

import (
	"context"
	"path/filepath"

	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/instructions"
	"github.com/cowdogmoo/archpin/lockfile"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/cowdogmoo/archpin/outcome"
	"golang.org/x/sync/errgroup"
)

// Job is one independent lockfile generation.
type Job struct {
	Name         string
	Instructions instructions.Set
	Output       string
}

// Result pairs a Job with how it ended.
type Result struct {
	Job     Job
	Outcome outcome.Outcome[*lockfile.Lockfile]
}

// GenerateAll runs jobs concurrently, at most limit at a time (limit < 1
// means no limit). A failing job does not stop the others. Results are
// returned in job order. Every job must own its output file.
func (g *Generator) GenerateAll(ctx context.Context, jobs []Job, limit int) ([]Result, error) {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		out := filepath.Clean(job.Output)
		if prev, dup := seen[out]; dup {
			return nil, errors.Newf(errors.KindConfiguration,
				"jobs %q and %q both write %s", prev, job.Name, out)
		}
		seen[out] = job.Name
	}

	results := make([]Result, len(jobs))
	var eg errgroup.Group
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i, job := range jobs {
		eg.Go(func() error {
			logging.DebugContext(ctx, "Generating lockfile for %s", job.Name)
			results[i] = Result{Job: job, Outcome: g.Generate(ctx, job.Instructions, job.Output)}
			return nil
		})
	}

	// Jobs report through their outcomes, never through the group.
	_ = eg.Wait()
	return results, nil
}

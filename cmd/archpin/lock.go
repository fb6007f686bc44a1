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

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cowdogmoo/archpin/cli"
	"github.com/cowdogmoo/archpin/config"
	"github.com/cowdogmoo/archpin/instructions"
	"github.com/cowdogmoo/archpin/lockgen"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/spf13/cobra"
)

// lockFileSuffix names lockfiles written next to their pipeline file when
// several pipelines are locked at once.
const lockFileSuffix = ".lock.yaml"

func newLockCmd() *cobra.Command {
	opts := &cli.LockCLIOptions{}

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Pin a pipeline's base image to per-architecture digests",
		Long: `Resolve the static base image declared by a pipeline file to one digest
per architecture and write them to a lockfile.

The lockfile is rewritten on every run. A pipeline without a static base
image is skipped and no lockfile is written.

Examples:
  # Lock a single pipeline
  archpin lock --instructions pipeline.yaml --output archpin.lock.yaml

  # Lock several pipelines; each gets <name>.lock.yaml next to it
  archpin lock --instructions base.yaml --instructions tools.yaml --concurrency 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLock(cmd.Context(), configFromContext(cmd), *opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Instructions, "instructions", "i", nil, "Pipeline file declaring per-architecture build instructions (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Lockfile path (single pipeline only; default from lock.output)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "Maximum parallel inspections when locking several pipelines")

	return cmd
}

func runLock(ctx context.Context, cfg *config.Config, opts cli.LockCLIOptions) error {
	if err := cli.NewValidator().ValidateLockOptions(opts); err != nil {
		return err
	}

	jobs := make([]lockgen.Job, 0, len(opts.Instructions))
	for _, path := range opts.Instructions {
		set, err := instructions.Load(path)
		if err != nil {
			return err
		}
		jobs = append(jobs, lockgen.Job{
			Name:         pipelineName(path),
			Instructions: set,
			Output:       lockOutput(cfg, opts, path),
		})
	}

	tool, err := newTool(ctx, cfg)
	if err != nil {
		return err
	}
	gen := lockgen.New(tool)

	if len(jobs) == 1 {
		job := jobs[0]
		result := gen.Generate(ctx, job.Instructions, job.Output)
		switch {
		case result.Skipped():
			logging.InfoContext(ctx, "%s: %s; no lockfile written", job.Name, result.Reason)
			return nil
		case result.Failed():
			return result.Err
		}
		logging.InfoContext(ctx, "Wrote %s", job.Output)
		return nil
	}

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = cfg.Lock.Concurrency
	}

	results, err := gen.GenerateAll(ctx, jobs, concurrency)
	if err != nil {
		return err
	}
	if failed := cli.NewOutputFormatter("text").DisplayLockResults(ctx, results); failed > 0 {
		return fmt.Errorf("%d of %d pipelines failed to lock", failed, len(results))
	}
	return nil
}

// lockOutput picks where the lockfile for path goes. A single pipeline
// uses the configured output; several pipelines each get a sibling file.
func lockOutput(cfg *config.Config, opts cli.LockCLIOptions, path string) string {
	if len(opts.Instructions) == 1 {
		if opts.Output != "" {
			return opts.Output
		}
		return cfg.Lock.Output
	}
	return filepath.Join(filepath.Dir(path), pipelineName(path)+lockFileSuffix)
}

// pipelineName is the file name without directory or extension.
func pipelineName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

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

	"github.com/cowdogmoo/archpin/cli"
	"github.com/cowdogmoo/archpin/config"
	"github.com/cowdogmoo/archpin/manifesttool"
)

// newRunner builds the process runner; tests replace it with a scripted one.
var newRunner = func(path string) manifesttool.Runner {
	return manifesttool.NewExec(path)
}

// newTool returns a manifest-tool client configured from cfg, after
// checking the installed version against the configured constraint.
func newTool(ctx context.Context, cfg *config.Config) (*manifesttool.Tool, error) {
	env, err := cli.NewParser().ParseEnv(cfg.Tool.Env)
	if err != nil {
		return nil, fmt.Errorf("invalid tool.env: %w", err)
	}

	tool := manifesttool.New(newRunner(cfg.Tool.Path), manifesttool.WithEnv(env))
	if err := tool.CheckVersion(ctx, cfg.Tool.VersionConstraint); err != nil {
		return nil, err
	}
	return tool, nil
}

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

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cowdogmoo/archpin/lockfile"
	"github.com/cowdogmoo/archpin/lockgen"
	"github.com/cowdogmoo/archpin/logging"
)

// OutputFormatter formats command output for display.
type OutputFormatter struct {
	format string // text, table, json
}

// NewOutputFormatter creates a new output formatter with the specified format.
func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{
		format: format,
	}
}

// PinView is the display form of one lockfile entry.
type PinView struct {
	Architecture string `json:"architecture"`
	Platform     string `json:"platform"`
	Repository   string `json:"repository"`
	Tag          string `json:"tag"`
	Digest       string `json:"digest"`
	Reference    string `json:"reference"`
}

// DisplayLockfile writes the pins of lf to w.
func (f *OutputFormatter) DisplayLockfile(w io.Writer, lf *lockfile.Lockfile) error {
	views := make([]PinView, 0, len(lf.Images))
	for _, a := range lf.Architectures() {
		pin, _ := lf.Get(a)
		views = append(views, PinView{
			Architecture: a.String(),
			Platform:     a.PlatformString(),
			Repository:   pin.Repository,
			Tag:          pin.Tag,
			Digest:       pin.Digest.String(),
			Reference:    pin.String(),
		})
	}

	switch f.format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	case "table", "text", "":
		return displayPinsTable(w, views)
	default:
		return fmt.Errorf("unknown format: %s (supported: table, json)", f.format)
	}
}

func displayPinsTable(w io.Writer, views []PinView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ARCH\tPLATFORM\tREFERENCE"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, v := range views {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Architecture, v.Platform, v.Reference); err != nil {
			return fmt.Errorf("failed to write pin row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// DisplayLockResults logs how each generation ended and returns the
// number of failures.
func (f *OutputFormatter) DisplayLockResults(ctx context.Context, results []lockgen.Result) int {
	failures := 0
	for _, r := range results {
		switch {
		case r.Outcome.Skipped():
			logging.InfoContext(ctx, "%s: skipped (%s)", r.Job.Name, r.Outcome.Reason)
		case r.Outcome.Succeeded():
			logging.InfoContext(ctx, "%s: wrote %s (%d architectures)", r.Job.Name, r.Job.Output, len(r.Outcome.Value.Images))
		default:
			failures++
			logging.ErrorContext(ctx, "%s: %s error: %v", r.Job.Name, r.Outcome.Kind(), r.Outcome.Err)
		}
	}
	return failures
}

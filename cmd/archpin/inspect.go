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
	"fmt"
	"os"

	"github.com/cowdogmoo/archpin/cli"
	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/lockfile"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/cowdogmoo/archpin/publish"
	"github.com/spf13/cobra"
)

func newLockfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lockfile",
		Short: "Inspect lockfiles",
	}
	cmd.AddCommand(newLockfileShowCmd())
	cmd.AddCommand(newLockfileSchemaCmd())
	return cmd
}

func newLockfileShowCmd() *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the pinned references of a lockfile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = configFromContext(cmd).Lock.Output
			}
			lf, err := lockfile.Read(file)
			if err != nil {
				return err
			}
			return cli.NewOutputFormatter(format).DisplayLockfile(cmd.OutOrStdout(), lf)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Lockfile to read (default from lock.output)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, json)")
	return cmd
}

func newLockfileSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the lockfile format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := lockfile.MarshalSchema()
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap("write schema", output, err)
			}
			logging.InfoContext(cmd.Context(), "Wrote lockfile schema to %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the schema to a file instead of stdout")
	return cmd
}

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Inspect manifest list digest files",
	}
	cmd.AddCommand(newDigestShowCmd())
	return cmd
}

func newDigestShowCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the digest recorded by publish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := publish.ReadDigestFile(file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), d)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Digest file written by publish")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

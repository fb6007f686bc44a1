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

	"github.com/cowdogmoo/archpin/cli"
	"github.com/cowdogmoo/archpin/config"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/cowdogmoo/archpin/publish"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	opts := &cli.PublishCLIOptions{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Assemble per-architecture images into a manifest list",
		Long: `Create a manifest list from per-architecture tags and push it to the
target tag with manifest-tool.

All per-architecture tags must differ only in the architecture name, for
example registry/app:1.0-amd64 and registry/app:1.0-arm64. The push is
retried with exponential backoff. The manifest list digest is written to
a digest file for downstream steps.

Examples:
  archpin publish \
    --arch-tag x86_64=registry/app:1.0-amd64 \
    --arch-tag aarch64=registry/app:1.0-arm64 \
    --target registry/app:1.0 --name app

  # Explicit digest file
  archpin publish --arch-tag amd64=registry/app:1.0-amd64 \
    --target registry/app:1.0 --digest-file out/app.digest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPublish(cmd.Context(), configFromContext(cmd), *opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.ArchTags, "arch-tag", nil, "Per-architecture tag as arch=tag (repeatable)")
	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "Tag to push the manifest list to")
	cmd.Flags().StringVar(&opts.DigestFile, "digest-file", "", "File to write the manifest list digest to")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Write the digest to <digest-dir>/<name>.digest")
	cmd.Flags().StringVar(&opts.DigestDir, "digest-dir", "", "Directory for --name digest files (default from publish.digest_dir)")

	return cmd
}

func runPublish(ctx context.Context, cfg *config.Config, opts cli.PublishCLIOptions) error {
	validator := cli.NewValidator()
	if err := validator.ValidatePublishOptions(opts); err != nil {
		return err
	}

	tags, err := cli.NewParser().ParseArchTags(opts.ArchTags)
	if err != nil {
		return err
	}

	digestFile := opts.DigestFile
	if digestFile == "" {
		dir := opts.DigestDir
		if dir == "" {
			dir = cfg.Publish.DigestDir
		}
		digestFile = publish.DefaultDigestFile(dir, opts.Name)
	}

	tool, err := newTool(ctx, cfg)
	if err != nil {
		return err
	}

	publisher := publish.New(tool)
	publisher.Retry = cfg.RetryConfig()

	result := publisher.Publish(ctx, publish.Request{
		ArchitectureTags: tags,
		Target:           opts.Target,
		DigestFile:       digestFile,
	})
	if result.Failed() {
		return result.Err
	}

	logging.InfoContext(ctx, "Digest written to %s", digestFile)
	logging.OutputContext(ctx, result.Value.String())
	return nil
}

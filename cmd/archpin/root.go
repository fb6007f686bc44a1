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

// Package main implements the archpin CLI, which pins multi-architecture
// base images to per-architecture digests and publishes manifest lists
// through manifest-tool.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cowdogmoo/archpin/config"
	"github.com/cowdogmoo/archpin/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Context key type for storing config
type configKeyType struct{}

// configKey is the context key for storing the config
var configKey = configKeyType{}

// rootOptions holds the global persistent flags.
type rootOptions struct {
	cfgFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "archpin",
		Short: "Pin and publish multi-architecture base images",
		Long: `archpin resolves the base image of a build pipeline to one digest per
architecture, records them in a lockfile, and assembles per-architecture
images into a manifest list.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "Config file (default is $HOME/.archpin/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "", "Log format (text, json, color)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Quiet mode - only show errors")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose mode - show debug output")

	cmd.AddCommand(newLockCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newLockfileCmd())
	cmd.AddCommand(newDigestCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// configFromContext retrieves the config from the command context.
// Returns nil if no config is stored in context.
func configFromContext(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return nil
}

// initConfig initializes configuration with proper precedence:
// CLI Flags > Environment Variables > Config File > Defaults
func initConfig(cmd *cobra.Command, opts *rootOptions) error {
	var cfg *config.Config
	var err error
	if opts.cfgFile != "" {
		cfg, err = config.LoadFromPath(opts.cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Seed a flag-binding viper with the loaded values so that flags only
	// win when they were given explicitly.
	v := viper.New()
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("lock.output", cfg.Lock.Output)
	v.SetDefault("lock.concurrency", cfg.Lock.Concurrency)
	v.SetDefault("publish.digest_dir", cfg.Publish.DigestDir)

	if err := v.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return fmt.Errorf("failed to bind log-level flag: %w", err)
	}
	if err := v.BindPFlag("log.format", cmd.Root().PersistentFlags().Lookup("log-format")); err != nil {
		return fmt.Errorf("failed to bind log-format flag: %w", err)
	}

	// Command flags share their names with config keys, e.g. lock --output
	// is lock.output.
	BindCommandFlagsToViper(v, cmd)

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")
	cfg.Lock.Output = v.GetString("lock.output")
	cfg.Lock.Concurrency = v.GetInt("lock.concurrency")
	cfg.Publish.DigestDir = v.GetString("publish.digest_dir")

	if err := cfg.Validate(); err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger, err := logging.Initialize(cfg.Log.Level, cfg.Log.Format, quiet, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.ConsoleWriter = cmd.ErrOrStderr()
	logger.Stdout = cmd.OutOrStdout()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = logging.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	return nil
}

// Execute runs the root command
func Execute() error {
	executed, err := newRootCmd().ExecuteContextC(context.Background())
	if err != nil {
		ctx := context.Background()
		if executed != nil && executed.Context() != nil {
			ctx = executed.Context()
		}
		logging.ErrorContext(ctx, err)
	}
	return err
}

// BindFlagsToViper binds all flags from a command to a Viper instance.
// The viperKey parameter allows specifying a prefix for the Viper keys (e.g., "lock" for lock command flags).
func BindFlagsToViper(v *viper.Viper, cmd *cobra.Command, viperKey string) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Convert flag name to viper key format (e.g., "digest-dir" -> "digest_dir")
		key := strings.ReplaceAll(f.Name, "-", "_")
		if viperKey != "" {
			key = viperKey + "." + key
		}

		if err := v.BindPFlag(key, f); err != nil {
			logging.WarnContext(cmd.Context(), "failed to bind flag %s to viper: %v", f.Name, err)
		}
	})
}

// BindCommandFlagsToViper binds flags from the current command and its parent persistent flags to Viper.
func BindCommandFlagsToViper(v *viper.Viper, cmd *cobra.Command) {
	// Get the command path for namespacing (e.g., "lock", "lockfile.show")
	cmdPath := getCommandPath(cmd)

	BindFlagsToViper(v, cmd, cmdPath)

	cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			logging.WarnContext(cmd.Context(), "failed to bind inherited flag %s to viper: %v", f.Name, err)
		}
	})
}

// getCommandPath returns the command path for Viper key namespacing.
// For example, "archpin lockfile show" returns "lockfile.show".
func getCommandPath(cmd *cobra.Command) string {
	var parts []string
	current := cmd

	for current != nil && current.Parent() != nil {
		parts = append([]string{current.Name()}, parts...)
		current = current.Parent()
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ".")
}

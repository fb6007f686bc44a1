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

// Package config loads archpin's user configuration.
//
// Settings come from an optional config.yaml, ARCHPIN_* environment
// variables and built-in defaults, in that order of precedence after any
// command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	archerrors "github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/manifesttool"
	"github.com/cowdogmoo/archpin/retry"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable archpin reads.
const EnvPrefix = "ARCHPIN"

var validate = validator.New()

// Config represents the archpin configuration.
type Config struct {
	Tool    ToolConfig    `mapstructure:"tool"`
	Lock    LockConfig    `mapstructure:"lock"`
	Publish PublishConfig `mapstructure:"publish"`
	Log     LogConfig     `mapstructure:"log"`
}

// ToolConfig locates and constrains the manifest-tool executable.
type ToolConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// VersionConstraint is a semver constraint such as ">= 2.0.0"; empty
	// accepts any version.
	VersionConstraint string `mapstructure:"version_constraint"`
	// Env holds NAME=value pairs passed to every tool invocation, e.g.
	// DOCKER_CONFIG for a non-default credential location.
	Env []string `mapstructure:"env" validate:"dive,contains=="`
}

// LockConfig holds lockfile generation settings.
type LockConfig struct {
	Output      string `mapstructure:"output" validate:"required"`
	Concurrency int    `mapstructure:"concurrency" validate:"gte=0"`
}

// PublishConfig holds manifest list publication settings.
type PublishConfig struct {
	DigestDir string      `mapstructure:"digest_dir" validate:"required"`
	Retry     RetryConfig `mapstructure:"retry"`
}

// RetryConfig bounds the push retry loop.
type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gte=1"`
	InitialDelay time.Duration `mapstructure:"initial_delay" validate:"gt=0,ltefield=MaxDelay"`
	MaxDelay     time.Duration `mapstructure:"max_delay" validate:"gt=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text plain color json"`
}

// Load reads the configuration file from the standard locations. A
// missing file is not an error; defaults apply.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(home, ".archpin"))
		v.AddConfigPath(filepath.Join(home, ".config", "archpin"))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, archerrors.Wrap("read config file", v.ConfigFileUsed(), err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, archerrors.Wrap("read config file", path, err)
	}

	return unmarshal(v)
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// RetryConfig converts the publish retry settings for the retry executor.
func (c *Config) RetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  c.Publish.Retry.MaxAttempts,
		InitialDelay: c.Publish.Retry.InitialDelay,
		MaxDelay:     c.Publish.Retry.MaxDelay,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// ARCHPIN_TOOL_PATH, ARCHPIN_LOG_LEVEL, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	bindEnvVars(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, archerrors.Wrap("decode config", "", err)
	}
	return &config, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("tool.path", manifesttool.DefaultExecutable)
	v.SetDefault("tool.version_constraint", "")
	v.SetDefault("tool.env", []string{})

	v.SetDefault("lock.output", "archpin.lock.yaml")
	v.SetDefault("lock.concurrency", 2)

	v.SetDefault("publish.digest_dir", "build")
	v.SetDefault("publish.retry.max_attempts", retry.DefaultMaxAttempts)
	v.SetDefault("publish.retry.initial_delay", retry.DefaultInitialDelay)
	v.SetDefault("publish.retry.max_delay", retry.DefaultMaxDelay)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "color")
}

// bindEnvVars explicitly binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("tool.path", "ARCHPIN_TOOL_PATH")
	_ = v.BindEnv("tool.version_constraint", "ARCHPIN_TOOL_VERSION_CONSTRAINT")
	_ = v.BindEnv("tool.env", "ARCHPIN_TOOL_ENV")

	_ = v.BindEnv("lock.output", "ARCHPIN_LOCK_OUTPUT")
	_ = v.BindEnv("lock.concurrency", "ARCHPIN_LOCK_CONCURRENCY")

	_ = v.BindEnv("publish.digest_dir", "ARCHPIN_PUBLISH_DIGEST_DIR")
	_ = v.BindEnv("publish.retry.max_attempts", "ARCHPIN_PUBLISH_RETRY_MAX_ATTEMPTS")
	_ = v.BindEnv("publish.retry.initial_delay", "ARCHPIN_PUBLISH_RETRY_INITIAL_DELAY")
	_ = v.BindEnv("publish.retry.max_delay", "ARCHPIN_PUBLISH_RETRY_MAX_DELAY")

	_ = v.BindEnv("log.level", "ARCHPIN_LOG_LEVEL")
	_ = v.BindEnv("log.format", "ARCHPIN_LOG_FORMAT")
}

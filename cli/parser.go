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

// Package cli translates raw command-line input into domain values and
// formats results for display. It keeps flag handling out of the lockgen
// and publish packages.
//
//	parser := cli.NewParser()
//	tags, err := parser.ParseArchTags([]string{"x86_64=registry/example:1.0-amd64"})
package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cowdogmoo/archpin/arch"
)

// envNamePattern matches POSIX environment variable names.
var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parser handles parsing of CLI input into structured data.
type Parser struct{}

// NewParser creates a new CLI parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseKeyValuePairs parses key=value pairs from CLI flags.
// Returns a map and an error if any pair is malformed.
//
// Example:
//
//	pairs := []string{"key1=value1", "key2=value2"}
//	result, err := parser.ParseKeyValuePairs(pairs)
//	// result == map[string]string{"key1": "value1", "key2": "value2"}
func (p *Parser) ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, err := ParseKeyValue(pair)
		if err != nil {
			return nil, fmt.Errorf("invalid pair %q: %w", pair, err)
		}
		result[key] = value
	}

	return result, nil
}

// ParseKeyValue parses a single key=value string.
// Returns the key, value, and an error if the format is invalid.
func ParseKeyValue(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return "", "", fmt.Errorf("expected format key=value, got %q", pair)
	}

	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if key == "" {
		return "", "", fmt.Errorf("key cannot be empty")
	}

	return key, value, nil
}

// ParseEnv parses NAME=value pairs passed to manifest-tool. Names must be
// valid environment variable names and keep their case.
func (p *Parser) ParseEnv(pairs []string) (map[string]string, error) {
	env, err := p.ParseKeyValuePairs(pairs)
	if err != nil {
		return nil, err
	}
	for name := range env {
		if !envNamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid environment variable name %q", name)
		}
	}
	return env, nil
}

// ParseArchTags parses arch=tag pairs. The architecture may be given by
// canonical id (x86_64) or docker name (amd64); each may appear once.
func (p *Parser) ParseArchTags(pairs []string) (map[arch.Architecture]string, error) {
	tags := make(map[arch.Architecture]string, len(pairs))
	for _, pair := range pairs {
		key, tag, err := ParseKeyValue(pair)
		if err != nil {
			return nil, fmt.Errorf("invalid arch tag %q: %w", pair, err)
		}
		a, err := arch.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("invalid arch tag %q: %w", pair, err)
		}
		if tag == "" {
			return nil, fmt.Errorf("invalid arch tag %q: tag cannot be empty", pair)
		}
		if _, dup := tags[a]; dup {
			return nil, fmt.Errorf("architecture %s given more than once", a)
		}
		tags[a] = tag
	}
	return tags, nil
}

// ValidateKeyValueFormat checks if a string is in key=value format without parsing.
// Returns true if the format is valid, false otherwise.
func ValidateKeyValueFormat(pair string) bool {
	key, _, ok := strings.Cut(pair, "=")
	return ok && strings.TrimSpace(key) != ""
}

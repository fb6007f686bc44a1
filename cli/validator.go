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
	"fmt"
)

// Validator validates CLI input before passing to business logic.
type Validator struct {
	parser *Parser
}

// NewValidator creates a new CLI validator.
func NewValidator() *Validator {
	return &Validator{
		parser: NewParser(),
	}
}

// ValidateLockOptions checks the lock command flags.
func (v *Validator) ValidateLockOptions(opts LockCLIOptions) error {
	if len(opts.Instructions) == 0 {
		return fmt.Errorf("at least one --instructions file is required")
	}
	if opts.Output != "" && len(opts.Instructions) > 1 {
		return fmt.Errorf("--output can only be used with a single --instructions file")
	}
	if opts.Concurrency < 0 {
		return fmt.Errorf("--concurrency cannot be negative")
	}
	return nil
}

// ValidatePublishOptions checks the publish command flags.
func (v *Validator) ValidatePublishOptions(opts PublishCLIOptions) error {
	if len(opts.ArchTags) == 0 {
		return fmt.Errorf("at least one --arch-tag is required")
	}
	for _, pair := range opts.ArchTags {
		if !ValidateKeyValueFormat(pair) {
			return fmt.Errorf("invalid arch-tag format: %s (expected arch=tag)", pair)
		}
	}
	if _, err := v.parser.ParseArchTags(opts.ArchTags); err != nil {
		return err
	}
	if opts.Target == "" {
		return fmt.Errorf("--target is required")
	}
	if opts.DigestFile != "" && opts.Name != "" {
		return fmt.Errorf("only one of --digest-file or --name can be specified")
	}
	if opts.DigestFile == "" && opts.Name == "" {
		return fmt.Errorf("one of --digest-file or --name is required")
	}
	return nil
}

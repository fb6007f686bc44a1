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

// Package lockfile reads and writes the per-architecture pin file that
// records which digest each upstream base image tag resolved to.
package lockfile

import (
	"fmt"

	"github.com/opencontainers/go-digest"
	"go.podman.io/image/v5/docker/reference"
)

// PinnedImageReference is one architecture's content-addressed image.
type PinnedImageReference struct {
	Repository string
	Tag        string
	Digest     digest.Digest
}

// NewPinnedImageReference validates and returns a pin.
func NewPinnedImageReference(repository, tag string, d digest.Digest) (PinnedImageReference, error) {
	p := PinnedImageReference{Repository: repository, Tag: tag, Digest: d}
	if err := p.Validate(); err != nil {
		return PinnedImageReference{}, err
	}
	return p, nil
}

// ValidateDigest accepts only sha256 digests with 64 lower-case hex
// characters.
func ValidateDigest(d digest.Digest) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid digest %q: %w", d, err)
	}
	if d.Algorithm() != digest.SHA256 {
		return fmt.Errorf("invalid digest %q: algorithm must be %s", d, digest.SHA256)
	}
	return nil
}

// Validate checks that every field is set and the digest is well formed.
func (p PinnedImageReference) Validate() error {
	if p.Repository == "" {
		return fmt.Errorf("repository is required")
	}
	if p.Tag == "" {
		return fmt.Errorf("tag is required for %s", p.Repository)
	}
	return ValidateDigest(p.Digest)
}

// String returns repository:tag@digest.
func (p PinnedImageReference) String() string {
	return p.Repository + ":" + p.Tag + "@" + p.Digest.String()
}

// Reference parses the pin as a docker reference carrying both the tag and
// the digest.
func (p PinnedImageReference) Reference() (reference.Canonical, error) {
	ref, err := reference.Parse(p.String())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	canonical, ok := ref.(reference.Canonical)
	if !ok {
		return nil, fmt.Errorf("%s is not a digested reference", p)
	}
	return canonical, nil
}

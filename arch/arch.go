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

// Package arch defines the closed set of CPU architectures images are built
// for, and the names each one goes by in the outside world.
package arch

import (
	"fmt"
	"slices"
	"strings"

	v1 "github.com/opencontainers/image-spec/specs-go/v1"
)

// Architecture is a supported target CPU platform.
type Architecture int

// Supported architectures. The zero value is deliberately invalid.
const (
	X86_64 Architecture = iota + 1
	AARCH64
)

// defaultOS is the only operating system images are built for.
const defaultOS = "linux"

type names struct {
	id     string
	docker string
}

// table is the single source of truth for every external name.
var table = map[Architecture]names{
	X86_64:  {id: "x86_64", docker: "amd64"},
	AARCH64: {id: "aarch64", docker: "arm64"},
}

// All returns every supported architecture in enumeration order.
func All() []Architecture {
	return []Architecture{X86_64, AARCH64}
}

// Valid reports whether a is a member of the enumeration.
func (a Architecture) Valid() bool {
	_, ok := table[a]
	return ok
}

// String returns the canonical identifier (x86_64, aarch64).
func (a Architecture) String() string {
	if n, ok := table[a]; ok {
		return n.id
	}
	return fmt.Sprintf("Architecture(%d)", int(a))
}

// DockerName returns the architecture string used by registries and the
// manifest tool (amd64, arm64).
func (a Architecture) DockerName() string {
	return table[a].docker
}

// PlatformString returns the os/arch platform string (linux/amd64).
func (a Architecture) PlatformString() string {
	return FormatPlatform(a.Platform())
}

// Platform returns the OCI platform descriptor for a.
func (a Architecture) Platform() v1.Platform {
	return v1.Platform{OS: defaultOS, Architecture: a.DockerName()}
}

// FromDockerName is the inverse of DockerName. Unknown names, such as the
// "unknown" entries registries use for attestations, yield false.
func FromDockerName(name string) (Architecture, bool) {
	for _, a := range All() {
		if table[a].docker == name {
			return a, true
		}
	}
	return 0, false
}

// Parse accepts the canonical identifier (aarch64), the docker name
// (arm64) or a linux platform string (linux/arm64).
func Parse(s string) (Architecture, error) {
	for _, a := range All() {
		if table[a].id == s {
			return a, nil
		}
	}
	if a, ok := FromDockerName(s); ok {
		return a, nil
	}
	if strings.Contains(s, "/") {
		if a, ok := FromPlatform(s); ok {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unsupported architecture %q", s)
}

// MarshalText encodes a as its canonical identifier.
func (a Architecture) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid architecture %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes any form Parse accepts.
func (a *Architecture) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Sort orders architectures by enumeration order, in place.
func Sort(archs []Architecture) {
	slices.Sort(archs)
}

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

package arch

import (
	"fmt"
	"strings"

	v1 "github.com/opencontainers/image-spec/specs-go/v1"
)

// arm64Variant is the only variant arm64 images carry; amd64 has none.
const arm64Variant = "v8"

// ParsePlatform splits an os/arch[/variant] platform string as used by
// `docker buildx --platform` and manifest-tool --platforms. Both OS and
// architecture are required.
func ParsePlatform(platform string) (v1.Platform, error) {
	parts := strings.Split(platform, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return v1.Platform{}, fmt.Errorf("platform %q is not os/arch[/variant]", platform)
	}
	for _, part := range parts {
		if part == "" {
			return v1.Platform{}, fmt.Errorf("platform %q has an empty component", platform)
		}
	}

	p := v1.Platform{OS: parts[0], Architecture: parts[1]}
	if len(parts) == 3 {
		p.Variant = parts[2]
	}
	return p, nil
}

// FromPlatform resolves a platform string such as linux/arm64 or
// linux/arm64/v8. Only linux platforms of a supported architecture match.
func FromPlatform(platform string) (Architecture, bool) {
	p, err := ParsePlatform(platform)
	if err != nil || p.OS != defaultOS {
		return 0, false
	}
	a, ok := FromDockerName(p.Architecture)
	if !ok {
		return 0, false
	}
	switch {
	case p.Variant == "":
		return a, true
	case a == AARCH64 && p.Variant == arm64Variant:
		return a, true
	default:
		return 0, false
	}
}

// FormatPlatform formats an OCI platform as os/arch[/variant].
func FormatPlatform(p v1.Platform) string {
	if p.Variant != "" {
		return p.OS + "/" + p.Architecture + "/" + p.Variant
	}
	return p.OS + "/" + p.Architecture
}

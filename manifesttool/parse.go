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

package manifesttool

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/opencontainers/go-digest"
)

var (
	// ErrNoOutput is returned when a successful push printed nothing.
	ErrNoOutput = errors.New("no output")
	// ErrUnexpectedOutput is returned when a successful push printed
	// something other than its digest line.
	ErrUnexpectedOutput = errors.New("unexpected output")
)

// pushDigestPattern matches "Digest: sha256:<hex>". Some releases append
// the manifest list size after the digest.
var pushDigestPattern = regexp.MustCompile(`^Digest: (sha256:[a-f0-9]{64})(?:\s+\d+)?$`)

var versionPattern = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?`)

// InspectEntry is one platform entry of `inspect --raw` output. Fields
// other than Architecture and Digest are informational.
type InspectEntry struct {
	Ref          string        `json:"Ref,omitempty"`
	Digest       digest.Digest `json:"Digest"`
	MediaType    string        `json:"MediaType,omitempty"`
	Size         int64         `json:"Size,omitempty"`
	Architecture string        `json:"Architecture"`
	OS           string        `json:"OS,omitempty"`
	Variant      string        `json:"Variant,omitempty"`
}

// ParseInspectRaw decodes `inspect --raw` output, a JSON array with one
// element per platform.
func ParseInspectRaw(output string) ([]InspectEntry, error) {
	var entries []InspectEntry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		return nil, fmt.Errorf("decode inspect output: %w", err)
	}
	return entries, nil
}

// ParsePushDigest extracts the manifest list digest from the output of a
// successful `push from-args`. Surrounding whitespace is ignored.
func ParsePushDigest(output string) (digest.Digest, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "", ErrNoOutput
	}

	m := pushDigestPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return "", ErrUnexpectedOutput
	}

	d := digest.Digest(m[1])
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedOutput, err)
	}
	return d, nil
}

// ParseVersion finds the first semantic version in `--version` output,
// e.g. "manifest-tool version 2.1.6 (commit: 1b2c3d)".
func ParseVersion(output string) (*semver.Version, error) {
	raw := versionPattern.FindString(output)
	if raw == "" {
		return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	return semver.NewVersion(raw)
}

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

package publish

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cowdogmoo/archpin/errors"
	"github.com/cowdogmoo/archpin/lockfile"
	"github.com/opencontainers/go-digest"
)

// DigestFileExt is the suffix of published digest files.
const DigestFileExt = ".digest"

// DefaultDigestFile returns <dir>/<name>.digest.
func DefaultDigestFile(dir, name string) string {
	return filepath.Join(dir, name+DigestFileExt)
}

// WriteDigestFile writes d as the only content of path, without a trailing
// newline, creating parent directories as needed.
func WriteDigestFile(path string, d digest.Digest) error {
	if err := lockfile.ValidateDigest(d); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap("create digest directory", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(d.String()), 0644); err != nil {
		return errors.Wrap("write digest file", path, err)
	}
	return nil
}

// ReadDigestFile returns the digest on the first line of path.
func ReadDigestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap("read digest file", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", errors.Wrap("read digest file", path, err)
		}
		return "", fmt.Errorf("digest file %s is empty", path)
	}

	d := digest.Digest(strings.TrimSpace(scanner.Text()))
	if err := lockfile.ValidateDigest(d); err != nil {
		return "", fmt.Errorf("digest file %s: %w", path, err)
	}
	return d, nil
}

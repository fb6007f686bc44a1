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

package lockfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// Lockfile maps every architecture to its pinned upstream image. All
// entries share one repository.
type Lockfile struct {
	Images map[arch.Architecture]PinnedImageReference
}

type fileEntry struct {
	Repository string `yaml:"repository" jsonschema:"minLength=1"`
	Tag        string `yaml:"tag" jsonschema:"minLength=1"`
	Digest     string `yaml:"digest" jsonschema:"pattern=^sha256:[a-f0-9]{64}$"`
}

// file is the on-disk shape. yaml.v3 emits map keys sorted, which keeps
// the output stable for version control.
type file struct {
	Images map[string]fileEntry `yaml:"images"`
}

// New builds and validates a Lockfile.
func New(images map[arch.Architecture]PinnedImageReference) (*Lockfile, error) {
	l := &Lockfile{Images: images}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate enforces a non-empty mapping of valid pins sharing one
// repository.
func (l *Lockfile) Validate() error {
	if l == nil || len(l.Images) == 0 {
		return fmt.Errorf("lockfile has no images")
	}

	var repository string
	for _, a := range l.Architectures() {
		pin := l.Images[a]
		if !a.Valid() {
			return fmt.Errorf("lockfile contains invalid architecture %s", a)
		}
		if err := pin.Validate(); err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
		if repository == "" {
			repository = pin.Repository
			continue
		}
		if pin.Repository != repository {
			return fmt.Errorf("%s pins repository %q, expected %q", a, pin.Repository, repository)
		}
	}
	return nil
}

// Get returns the pin for a.
func (l *Lockfile) Get(a arch.Architecture) (PinnedImageReference, bool) {
	p, ok := l.Images[a]
	return p, ok
}

// Architectures returns the pinned architectures in enumeration order.
func (l *Lockfile) Architectures() []arch.Architecture {
	archs := make([]arch.Architecture, 0, len(l.Images))
	for a := range l.Images {
		archs = append(archs, a)
	}
	arch.Sort(archs)
	return archs
}

// Repository returns the repository shared by every entry.
func (l *Lockfile) Repository() string {
	for _, a := range l.Architectures() {
		return l.Images[a].Repository
	}
	return ""
}

// Encode validates l and writes it as YAML.
func (l *Lockfile) Encode(w io.Writer) error {
	if err := l.Validate(); err != nil {
		return err
	}

	out := file{Images: make(map[string]fileEntry, len(l.Images))}
	for a, pin := range l.Images {
		out.Images[a.String()] = fileEntry{
			Repository: pin.Repository,
			Tag:        pin.Tag,
			Digest:     pin.Digest.String(),
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML lockfile and validates it. Keys must be canonical
// architecture identifiers.
func Decode(r io.Reader) (*Lockfile, error) {
	var in file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("lockfile is empty")
		}
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}

	images := make(map[arch.Architecture]PinnedImageReference, len(in.Images))
	for key, entry := range in.Images {
		a, ok := canonical(key)
		if !ok {
			return nil, fmt.Errorf("unknown architecture %q in lockfile", key)
		}
		images[a] = PinnedImageReference{
			Repository: entry.Repository,
			Tag:        entry.Tag,
			Digest:     digest.Digest(entry.Digest),
		}
	}
	return New(images)
}

// Write atomically replaces path with the encoded lockfile. The whole
// file is rendered in memory first, so a failed write leaves any previous
// lockfile untouched.
func (l *Lockfile) Write(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating lockfile directory %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp lockfile for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp lockfile %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp lockfile %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp lockfile to %s: %w", path, err)
	}
	return nil
}

// Marshal returns the encoded lockfile.
func (l *Lockfile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := l.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read loads and validates the lockfile at path.
func Read(path string) (*Lockfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading lockfile %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	l, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

func canonical(key string) (arch.Architecture, bool) {
	for _, a := range arch.All() {
		if a.String() == key {
			return a, true
		}
	}
	return 0, false
}

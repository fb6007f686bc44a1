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

package publish_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cowdogmoo/archpin/publish"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestFileRoundTrip(t *testing.T) {
	t.Parallel()

	d := digest.Digest("sha256:" + hexA)
	path := filepath.Join(t.TempDir(), "build", "nested", "example.digest")

	require.NoError(t, publish.WriteDigestFile(path, d))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, d.String(), string(data), "single line without trailing newline")

	got, err := publish.ReadDigestFile(path)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestReadDigestFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    digest.Digest
		wantErr string
	}{
		{name: "trailing newline", content: "sha256:" + hexA + "\n", want: digest.Digest("sha256:" + hexA)},
		{name: "first line only", content: " sha256:" + hexA + " \nignored\n", want: digest.Digest("sha256:" + hexA)},
		{name: "empty", content: "", wantErr: "is empty"},
		{name: "malformed", content: "sha256:nothex\n", wantErr: "invalid digest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "example.digest")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := publish.ReadDigestFile(path)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadDigestFileMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.digest")
	_, err := publish.ReadDigestFile(path)
	assert.ErrorContains(t, err, "failed to read digest file ("+path+")")
}

func TestWriteDigestFileRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "example.digest")
	assert.Error(t, publish.WriteDigestFile(path, "sha256:abc"))
	assert.NoFileExists(t, path)
}

func TestWriteDigestFileUnwritableDirectory(t *testing.T) {
	t.Parallel()

	parent := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.WriteFile(parent, []byte("not a directory"), 0644))

	err := publish.WriteDigestFile(filepath.Join(parent, "example.digest"), digest.Digest("sha256:"+hexA))
	assert.ErrorContains(t, err, "failed to create digest directory ("+parent+")")
}

func TestDefaultDigestFile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("build", "example.digest"), publish.DefaultDigestFile("build", "example"))
}

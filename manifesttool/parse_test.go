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
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hexA = strings.Repeat("a", 64)
	hexB = strings.Repeat("b", 64)
)

func TestParseInspectRaw(t *testing.T) {
	t.Parallel()

	output := `[
  {"Ref":"registry/example:1.0@sha256:` + hexA + `","Digest":"sha256:` + hexA + `","MediaType":"application/vnd.oci.image.manifest.v1+json","Size":1234,"Architecture":"amd64","OS":"linux"},
  {"Digest":"sha256:` + hexB + `","Architecture":"arm64","OS":"linux","Variant":"v8"},
  {"Digest":"sha256:` + strings.Repeat("c", 64) + `","Architecture":"unknown","OS":"unknown"}
]`

	entries, err := ParseInspectRaw(output)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "amd64", entries[0].Architecture)
	assert.Equal(t, digest.Digest("sha256:"+hexA), entries[0].Digest)
	assert.Equal(t, int64(1234), entries[0].Size)
	assert.Equal(t, "v8", entries[1].Variant)
	assert.Equal(t, "unknown", entries[2].Architecture)
}

func TestParseInspectRawErrors(t *testing.T) {
	t.Parallel()

	for _, output := range []string{"", "not json", `{"Architecture":"amd64"}`} {
		_, err := ParseInspectRaw(output)
		assert.Error(t, err, "output %q", output)
	}
}

func TestParseInspectRawEmptyArray(t *testing.T) {
	t.Parallel()

	entries, err := ParseInspectRaw("[]")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParsePushDigest(t *testing.T) {
	t.Parallel()

	want := digest.Digest("sha256:" + hexA)

	tests := []struct {
		name    string
		output  string
		want    digest.Digest
		wantErr error
	}{
		{name: "exact", output: "Digest: sha256:" + hexA, want: want},
		{name: "surrounding whitespace", output: "\n  Digest: sha256:" + hexA + "  \n", want: want},
		{name: "trailing size", output: "Digest: sha256:" + hexA + " 433", want: want},
		{name: "empty", output: "", wantErr: ErrNoOutput},
		{name: "whitespace only", output: " \n\t", wantErr: ErrNoOutput},
		{name: "garbage", output: "some garbage", wantErr: ErrUnexpectedOutput},
		{name: "short digest", output: "Digest: sha256:abc", wantErr: ErrUnexpectedOutput},
		{name: "upper-case hex", output: "Digest: sha256:" + strings.Repeat("A", 64), wantErr: ErrUnexpectedOutput},
		{name: "wrong algorithm", output: "Digest: sha512:" + hexA, wantErr: ErrUnexpectedOutput},
		{name: "extra text", output: "Digest: sha256:" + hexA + " pushed!", wantErr: ErrUnexpectedOutput},
		{name: "preceding log line", output: "pushing\nDigest: sha256:" + hexA, wantErr: ErrUnexpectedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePushDigest(tt.output)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		output  string
		want    string
		wantErr bool
	}{
		{output: "manifest-tool version 2.1.6 (commit: 1b2c3d4)", want: "2.1.6"},
		{output: "manifest-tool version v1.0.3\n", want: "1.0.3"},
		{output: "2.0.0-rc.1", want: "2.0.0-rc.1"},
		{output: "manifest-tool version dev", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			t.Parallel()
			v, err := ParseVersion(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

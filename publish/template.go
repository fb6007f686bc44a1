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
	"slices"
	"strings"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/cowdogmoo/archpin/errors"
)

// Placeholder stands in for the architecture name in a manifest-tool
// template.
const Placeholder = "ARCH"

// DeriveTemplate collapses every architecture name in each tag to
// Placeholder. All tags must collapse to the same template.
//
//	{x86_64: "registry/example:1.0-amd64", aarch64: "registry/example:1.0-arm64"}
//	=> "registry/example:1.0-ARCH"
func DeriveTemplate(tags map[arch.Architecture]string) (string, error) {
	templates := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		templates[templateOf(tag)] = struct{}{}
	}

	switch len(templates) {
	case 0:
		return "", errors.New(errors.KindConfiguration, "no input tags present")
	case 1:
		for t := range templates {
			return t, nil
		}
	}

	distinct := make([]string, 0, len(templates))
	for t := range templates {
		distinct = append(distinct, t)
	}
	slices.Sort(distinct)
	return "", errors.Newf(errors.KindConfiguration,
		"cannot derive template: per-architecture tags collapse to %d templates: %s",
		len(distinct), strings.Join(distinct, ", "))
}

func templateOf(tag string) string {
	for _, a := range arch.All() {
		tag = strings.ReplaceAll(tag, a.DockerName(), Placeholder)
	}
	return tag
}

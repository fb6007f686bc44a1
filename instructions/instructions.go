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

// Package instructions models the ordered, per-architecture build steps a
// pipeline declares for an image. Only the From step matters when pinning
// base images; the others are carried so a pipeline file loads intact.
package instructions

import (
	"slices"

	"github.com/cowdogmoo/archpin/arch"
)

// Instruction is one build step. The set of implementations is closed.
type Instruction interface {
	// Keyword returns the pipeline file key for the step, e.g. "from".
	Keyword() string
	instruction()
}

// From bases the image on a static upstream reference.
type From struct {
	Reference string
}

// Run executes shell commands.
type Run struct {
	Commands []string
}

// Copy adds files from the build context.
type Copy struct {
	Source      string
	Destination string
}

// Env sets an environment variable.
type Env struct {
	Key   string
	Value string
}

// Entrypoint sets the image entrypoint.
type Entrypoint struct {
	Value []string
}

// Cmd sets the default command.
type Cmd struct {
	Value []string
}

// Label adds image metadata.
type Label struct {
	Key   string
	Value string
}

// Workdir sets the working directory.
type Workdir struct {
	Path string
}

// User sets the user the image runs as.
type User struct {
	Name string
}

func (From) Keyword() string       { return "from" }
func (Run) Keyword() string        { return "run" }
func (Copy) Keyword() string       { return "copy" }
func (Env) Keyword() string        { return "env" }
func (Entrypoint) Keyword() string { return "entrypoint" }
func (Cmd) Keyword() string        { return "cmd" }
func (Label) Keyword() string      { return "label" }
func (Workdir) Keyword() string    { return "workdir" }
func (User) Keyword() string       { return "user" }

func (From) instruction()       {}
func (Run) instruction()        {}
func (Copy) instruction()       {}
func (Env) instruction()        {}
func (Entrypoint) instruction() {}
func (Cmd) instruction()        {}
func (Label) instruction()      {}
func (Workdir) instruction()    {}
func (User) instruction()       {}

// Set holds the instruction list for each architecture.
type Set map[arch.Architecture][]Instruction

// Architectures returns the architectures in s in enumeration order.
func (s Set) Architectures() []arch.Architecture {
	archs := make([]arch.Architecture, 0, len(s))
	for a := range s {
		archs = append(archs, a)
	}
	arch.Sort(archs)
	return archs
}

// FromReferences returns the reference of every From step, walking
// architectures in enumeration order and steps in declaration order.
func (s Set) FromReferences() []string {
	var refs []string
	for _, a := range s.Architectures() {
		for _, inst := range s[a] {
			if from, ok := inst.(From); ok {
				refs = append(refs, from.Reference)
			}
		}
	}
	return refs
}

// DistinctFromReferences is FromReferences with duplicates removed,
// sorted.
func (s Set) DistinctFromReferences() []string {
	refs := s.FromReferences()
	slices.Sort(refs)
	return slices.Compact(refs)
}

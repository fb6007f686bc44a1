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

package cli

// LockCLIOptions captures the flags of the lock command.
type LockCLIOptions struct {
	// Instructions are pipeline files, one lockfile each.
	Instructions []string

	// Output is the lockfile path. Only valid with a single pipeline file.
	Output string

	// Concurrency bounds parallel generations when several pipeline files
	// are given.
	Concurrency int
}

// PublishCLIOptions captures the flags of the publish command.
type PublishCLIOptions struct {
	// ArchTags are unparsed arch=tag pairs.
	ArchTags []string

	// Target is the manifest list tag.
	Target string

	// DigestFile is where the digest is written. When empty the file is
	// derived from DigestDir and Name.
	DigestFile string

	// DigestDir holds derived digest files.
	DigestDir string

	// Name names the derived digest file.
	Name string
}

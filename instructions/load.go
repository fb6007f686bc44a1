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

package instructions

import (
	"fmt"
	"os"

	"github.com/cowdogmoo/archpin/arch"
	"gopkg.in/yaml.v3"
)

// Load reads a pipeline file: a mapping from architecture to an ordered
// list of single-key instruction mappings.
//
//	x86_64:
//	  - from: ubuntu:22.04
//	  - run: [apt-get update, apt-get install -y curl]
//	  - env: {key: LANG, value: C.UTF-8}
//	aarch64:
//	  - from: ubuntu:22.04
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes pipeline file content. See Load for the format.
func Parse(data []byte) (Set, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing pipeline file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("pipeline file is empty")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of architectures", doc.Line)
	}

	set := make(Set, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]

		a, err := arch.Parse(key.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", key.Line, err)
		}
		if _, dup := set[a]; dup {
			return nil, fmt.Errorf("line %d: architecture %s declared twice", key.Line, a)
		}

		steps, err := decodeSteps(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a, err)
		}
		set[a] = steps
	}
	return set, nil
}

func decodeSteps(n *yaml.Node) ([]Instruction, error) {
	if n.Tag == "!!null" {
		return []Instruction{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of instructions", n.Line)
	}

	steps := make([]Instruction, 0, len(n.Content))
	for _, item := range n.Content {
		inst, err := decodeInstruction(item)
		if err != nil {
			return nil, err
		}
		steps = append(steps, inst)
	}
	return steps, nil
}

type keyValue struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

func decodeInstruction(n *yaml.Node) (Instruction, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, fmt.Errorf("line %d: each instruction must be a mapping with exactly one key", n.Line)
	}

	keyword, value := n.Content[0].Value, n.Content[1]
	switch keyword {
	case "from":
		ref, err := requiredString(value, keyword)
		if err != nil {
			return nil, err
		}
		return From{Reference: ref}, nil
	case "run":
		cmds, err := stringList(value)
		if err != nil {
			return nil, err
		}
		return Run{Commands: cmds}, nil
	case "copy":
		var c struct {
			Source      string `yaml:"source"`
			Destination string `yaml:"destination"`
		}
		if err := value.Decode(&c); err != nil {
			return nil, fmt.Errorf("line %d: copy: %w", value.Line, err)
		}
		if c.Source == "" || c.Destination == "" {
			return nil, fmt.Errorf("line %d: copy requires source and destination", value.Line)
		}
		return Copy{Source: c.Source, Destination: c.Destination}, nil
	case "env", "label":
		var kv keyValue
		if err := value.Decode(&kv); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", value.Line, keyword, err)
		}
		if kv.Key == "" {
			return nil, fmt.Errorf("line %d: %s requires a key", value.Line, keyword)
		}
		if keyword == "env" {
			return Env{Key: kv.Key, Value: kv.Value}, nil
		}
		return Label{Key: kv.Key, Value: kv.Value}, nil
	case "entrypoint":
		v, err := stringList(value)
		if err != nil {
			return nil, err
		}
		return Entrypoint{Value: v}, nil
	case "cmd":
		v, err := stringList(value)
		if err != nil {
			return nil, err
		}
		return Cmd{Value: v}, nil
	case "workdir":
		path, err := requiredString(value, keyword)
		if err != nil {
			return nil, err
		}
		return Workdir{Path: path}, nil
	case "user":
		name, err := requiredString(value, keyword)
		if err != nil {
			return nil, err
		}
		return User{Name: name}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown instruction %q", n.Content[0].Line, keyword)
	}
}

func requiredString(n *yaml.Node, keyword string) (string, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", fmt.Errorf("line %d: %s requires a non-empty string", n.Line, keyword)
	}
	return n.Value, nil
}

// stringList accepts a single scalar or a list of scalars.
func stringList(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return []string{n.Value}, nil
	}
	var out []string
	if err := n.Decode(&out); err != nil {
		return nil, fmt.Errorf("line %d: expected a string or list of strings: %w", n.Line, err)
	}
	return out, nil
}

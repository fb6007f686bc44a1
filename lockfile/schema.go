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
	"encoding/json"
	"fmt"

	"github.com/cowdogmoo/archpin/arch"
	"github.com/invopop/jsonschema"
)

// SchemaID identifies the generated lockfile schema.
const SchemaID = "https://github.com/cowdogmoo/archpin/schema/lockfile.json"

// Schema describes the on-disk lockfile format as a JSON schema, for editor
// validation of checked-in lockfiles.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		FieldNameTag:              "yaml",
	}

	schema := reflector.Reflect(&file{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "archpin lockfile"
	schema.Description = "Per-architecture base image digests"

	if images, ok := schema.Properties.Get("images"); ok {
		ids := make([]interface{}, 0, len(arch.All()))
		for _, a := range arch.All() {
			ids = append(ids, a.String())
		}
		images.PropertyNames = &jsonschema.Schema{Enum: ids}
		minImages := uint64(1)
		images.MinProperties = &minImages
	}
	return schema
}

// MarshalSchema renders Schema as indented JSON with a trailing newline.
func MarshalSchema() ([]byte, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lockfile schema: %w", err)
	}
	return append(data, '\n'), nil
}

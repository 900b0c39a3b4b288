// Copyright (c) 2024 The dimod Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dimod/di/definition"
)

// File is a source loaded from a YAML, TOML or JSON file mapping entry names
// to descriptors (see definition.Decode).
type File struct {
	Array

	path string
}

var _ Source = (*File)(nil)

// NewFile reads and decodes the definition file at path. The format is
// chosen by extension: .yaml, .yml, .toml or .json.
func NewFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read definition file %q", path)
	}

	raw := make(map[string]interface{})
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		_, err = toml.Decode(string(data), &raw)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(&raw)
	default:
		return nil, fmt.Errorf("definition file %q: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse definition file %q", path)
	}

	f := &File{path: path}
	for _, name := range sortedKeys(raw) {
		def, err := definition.Decode(name, raw[name])
		if err != nil {
			return nil, errors.Wrapf(err, "definition file %q", path)
		}
		f.AddDefinition(def)
	}
	return f, nil
}

// Path returns the file the definitions were read from.
func (f *File) Path() string { return f.path }

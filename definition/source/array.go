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
	"sort"

	"github.com/dimod/di/definition"
)

// Array is a source backed by an in-memory map of definitions.
type Array struct {
	defs map[string]definition.Definition
}

var _ Source = (*Array)(nil)

// NewArray normalizes defs into definitions. Values may be definitions,
// helpers, functions (factories), lists (arrays) or plain values.
func NewArray(n definition.Normalizer, defs map[string]interface{}) (*Array, error) {
	a := &Array{defs: make(map[string]definition.Definition, len(defs))}
	for _, name := range sortedKeys(defs) {
		def, err := n.Normalize(name, defs[name])
		if err != nil {
			return nil, err
		}
		a.defs[name] = def
	}
	return a, nil
}

// AddDefinition adds def, replacing any definition of the same name.
func (a *Array) AddDefinition(def definition.Definition) {
	if a.defs == nil {
		a.defs = make(map[string]definition.Definition)
	}
	a.defs[def.Name()] = def
}

// GetDefinition implements Source.
func (a *Array) GetDefinition(name string) (definition.Definition, error) {
	return a.defs[name], nil
}

// Definitions implements Source.
func (a *Array) Definitions() (map[string]definition.Definition, error) {
	out := make(map[string]definition.Definition, len(a.defs))
	for name, def := range a.defs {
		out[name] = def
	}
	return out, nil
}

// Mutable holds the definitions added to a running container. A chain
// consults it before any other source.
type Mutable struct {
	Array
}

// NewMutable returns an empty Mutable source.
func NewMutable() *Mutable {
	return &Mutable{}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

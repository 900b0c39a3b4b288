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

// Package source provides definitions to the container.
//
// A [Source] answers lookups by entry name. Sources are composed by a
// [Chain]: the first source holding a definition wins, definitions that
// extend a parent are merged with it, and autowiring is consulted last.
package source

import (
	"github.com/dimod/di/definition"
)

// Source supplies definitions by entry name.
type Source interface {
	// GetDefinition returns the definition of name, or nil if the source has
	// none.
	GetDefinition(name string) (definition.Definition, error)

	// Definitions returns every definition the source can enumerate, keyed
	// by entry name.
	Definitions() (map[string]definition.Definition, error)
}

// Autowiring is a source that infers definitions from registered types. It
// is also the hint resolver used to fill parameters nobody configured.
type Autowiring interface {
	Source
	definition.HintResolver

	// Autowire returns a copy of obj whose unset constructor parameters (and
	// properties, for tag-based autowiring) are inferred from its class.
	Autowire(obj *definition.Object) (*definition.Object, error)
}

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

// Chain composes sources by priority. The mutable source is consulted first,
// then the sources in the order given, then autowiring.
//
// A definition implementing definition.Extender is merged with its parent:
// a parent of the same name is looked up in the sources ranked below the one
// that provided the child, a parent of another name is looked up from the
// root source, which is the chain itself unless SetRoot was called.
type Chain struct {
	sources    []Source
	mutable    *Mutable
	autowiring Autowiring
	root       Source

	// extending lists the entries whose parent of another name is being
	// fetched from the root.
	extending []string
}

var _ Source = (*Chain)(nil)

// NewChain returns a chain over sources, highest priority first.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

// SetAutowiring sets the source consulted last. It also fills the unset
// parameters of objects declared with Autowire.
func (c *Chain) SetAutowiring(a Autowiring) { c.autowiring = a }

// Autowiring returns the autowiring source, or nil.
func (c *Chain) Autowiring() Autowiring { return c.autowiring }

// SetMutable sets the source consulted before all others.
func (c *Chain) SetMutable(m *Mutable) { c.mutable = m }

// Mutable returns the mutable source, or nil.
func (c *Chain) Mutable() *Mutable { return c.mutable }

// SetRoot sets the source parents of other names are fetched from, usually
// a cache wrapping this chain.
func (c *Chain) SetRoot(root Source) { c.root = root }

// GetDefinition implements Source.
func (c *Chain) GetDefinition(name string) (definition.Definition, error) {
	return c.lookup(name, 0)
}

// Definitions returns the merged definitions of every name the sources can
// enumerate. Autowiring enumerates nothing.
func (c *Chain) Definitions() (map[string]definition.Definition, error) {
	all := c.all()
	seen := make(map[string]struct{})
	for _, s := range all {
		defs, err := s.Definitions()
		if err != nil {
			return nil, err
		}
		for name := range defs {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]definition.Definition, len(names))
	for _, name := range names {
		def, err := c.GetDefinition(name)
		if err != nil {
			return nil, err
		}
		if def != nil {
			out[name] = def
		}
	}
	return out, nil
}

func (c *Chain) all() []Source {
	all := make([]Source, 0, len(c.sources)+2)
	if c.mutable != nil {
		all = append(all, c.mutable)
	}
	all = append(all, c.sources...)
	if c.autowiring != nil {
		all = append(all, c.autowiring)
	}
	return all
}

func (c *Chain) lookup(name string, from int) (definition.Definition, error) {
	all := c.all()
	for i := from; i < len(all); i++ {
		def, err := all[i].GetDefinition(name)
		if err != nil {
			return nil, err
		}
		if def == nil {
			continue
		}
		return c.complete(def, i)
	}
	return nil, nil
}

func (c *Chain) complete(def definition.Definition, index int) (definition.Definition, error) {
	if ext, ok := def.(definition.Extender); ok && ext.ParentName() != "" {
		var (
			parent definition.Definition
			err    error
		)
		if ext.ParentName() == def.Name() {
			parent, err = c.lookup(def.Name(), index+1)
		} else {
			parent, err = c.lookupParent(def.Name(), ext.ParentName())
		}
		if err != nil {
			return nil, err
		}
		if def, err = ext.Extend(parent); err != nil {
			return nil, err
		}
	}

	if obj, ok := def.(*definition.Object); ok && obj.Autowire && c.autowiring != nil {
		return c.autowiring.Autowire(obj)
	}
	return def, nil
}

// lookupParent fetches the parent of name from the root. A parent that is
// already being extended closes a cycle.
func (c *Chain) lookupParent(name, parent string) (definition.Definition, error) {
	for i, n := range c.extending {
		if n == parent {
			cycle := make([]string, 0, len(c.extending)-i+2)
			cycle = append(cycle, c.extending[i:]...)
			cycle = append(cycle, name, parent)
			return nil, &definition.CircularDependencyError{Chain: cycle}
		}
	}

	c.extending = append(c.extending, name)
	defer func() { c.extending = c.extending[:len(c.extending)-1] }()
	return c.rootSource().GetDefinition(parent)
}

func (c *Chain) rootSource() Source {
	if c.root != nil {
		return c.root
	}
	return c
}

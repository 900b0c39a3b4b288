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

package definition

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Object builds an instance of a registered class, injecting constructor
// arguments, properties (exported fields) and method calls.
//
// Fields left unset inherit from the parent definition when the object
// extends one: a nil map or flag is unset, while a map entry holding a nil
// Value is an explicit override.
type Object struct {
	EntryName string
	ClassName string

	// Type, when set, registers the class in the Registry the first time the
	// definition is normalized or resolved.
	Type reflect.Type

	Constructor map[int]Definition
	Properties  map[string]Definition
	Methods     []MethodCall

	Lazy   *bool
	Shared *bool

	// Autowire fills the constructor parameters that have no explicit
	// argument from the autowiring source.
	Autowire bool

	// Extends names the entry this definition inherits unset fields from.
	// When it equals EntryName, the parent comes from a lower priority
	// source.
	Extends string
}

// MethodCall is a method invoked after construction.
type MethodCall struct {
	Method string
	Args   map[int]Definition
}

var _ Extender = (*Object)(nil)

// Name returns the entry name.
func (d *Object) Name() string { return d.EntryName }

// WithName returns a copy bound to name. The class defaults to the entry
// name, as for autowired entries.
func (d *Object) WithName(name string) Definition {
	c := d.clone()
	c.EntryName = name
	return c
}

// Class returns the class name, defaulting to the entry name.
func (d *Object) Class() string {
	if d.ClassName != "" {
		return d.ClassName
	}
	return d.EntryName
}

// IsLazy reports whether a proxy is returned instead of the instance.
func (d *Object) IsLazy() bool { return d.Lazy != nil && *d.Lazy }

// IsShared reports whether the result is cached by the container.
func (d *Object) IsShared() bool { return isTrueOrUnset(d.Shared) }

// ParentName returns the entry this definition extends.
func (d *Object) ParentName() string { return d.Extends }

// Extend merges d over parent: fields set on d win, unset fields are taken
// from parent, constructor arguments and properties merge key by key, method
// calls merge by method name.
func (d *Object) Extend(parent Definition) (Definition, error) {
	if parent == nil {
		return nil, InvalidDefinitionf(d.EntryName, "parent entry %q does not exist", d.Extends)
	}
	p, ok := parent.(*Object)
	if !ok {
		return nil, InvalidDefinitionf(d.EntryName, "an object can only extend another object, %q is %s", d.Extends, parent.String())
	}

	merged := d.clone()
	merged.Extends = ""
	if merged.ClassName == "" {
		merged.ClassName = p.Class()
	}
	if merged.Type == nil && merged.ClassName == p.Class() {
		merged.Type = p.Type
	}
	if merged.Lazy == nil {
		merged.Lazy = p.Lazy
	}
	if merged.Shared == nil {
		merged.Shared = p.Shared
	}
	merged.Autowire = merged.Autowire || p.Autowire

	for i, arg := range p.Constructor {
		if _, set := merged.Constructor[i]; !set {
			if merged.Constructor == nil {
				merged.Constructor = make(map[int]Definition)
			}
			merged.Constructor[i] = arg
		}
	}
	for name, prop := range p.Properties {
		if _, set := merged.Properties[name]; !set {
			if merged.Properties == nil {
				merged.Properties = make(map[string]Definition)
			}
			merged.Properties[name] = prop
		}
	}

	own := make(map[string]bool, len(merged.Methods))
	for _, m := range merged.Methods {
		own[m.Method] = true
	}
	methods := make([]MethodCall, 0, len(p.Methods)+len(merged.Methods))
	for _, m := range p.Methods {
		if !own[m.Method] {
			methods = append(methods, m)
		}
	}
	merged.Methods = append(methods, merged.Methods...)
	if len(merged.Methods) == 0 {
		merged.Methods = nil
	}
	return merged, nil
}

func (d *Object) clone() *Object {
	c := *d
	if d.Constructor != nil {
		c.Constructor = make(map[int]Definition, len(d.Constructor))
		for k, v := range d.Constructor {
			c.Constructor[k] = v
		}
	}
	if d.Properties != nil {
		c.Properties = make(map[string]Definition, len(d.Properties))
		for k, v := range d.Properties {
			c.Properties[k] = v
		}
	}
	if d.Methods != nil {
		c.Methods = make([]MethodCall, len(d.Methods))
		copy(c.Methods, d.Methods)
	}
	return &c
}

// WithConstructorArgs returns a copy where args fill the constructor
// parameters that are not set yet.
func (d *Object) WithConstructorArgs(args map[int]Definition) *Object {
	c := d.clone()
	for i, arg := range args {
		if _, set := c.Constructor[i]; set {
			continue
		}
		if c.Constructor == nil {
			c.Constructor = make(map[int]Definition)
		}
		c.Constructor[i] = arg
	}
	return c
}

// WithProperties returns a copy where props fill the properties that are not
// set yet.
func (d *Object) WithProperties(props map[string]Definition) *Object {
	c := d.clone()
	for name, prop := range props {
		if _, set := c.Properties[name]; set {
			continue
		}
		if c.Properties == nil {
			c.Properties = make(map[string]Definition)
		}
		c.Properties[name] = prop
	}
	return c
}

func (d *Object) String() string {
	var b strings.Builder
	b.WriteString("Object (\n")
	fmt.Fprintf(&b, "    class = %s\n", d.Class())
	fmt.Fprintf(&b, "    lazy = %v\n", d.IsLazy())
	fmt.Fprintf(&b, "    shared = %v\n", d.IsShared())
	if len(d.Constructor) > 0 {
		b.WriteString("    constructor(\n")
		for _, i := range sortedInts(d.Constructor) {
			fmt.Fprintf(&b, "        $%d = %s\n", i, indent(indent(d.Constructor[i].String())))
		}
		b.WriteString("    )\n")
	}
	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "    %s = %s\n", name, indent(d.Properties[name].String()))
	}
	for _, m := range d.Methods {
		fmt.Fprintf(&b, "    %s(%s)\n", m.Method, strings.TrimPrefix(formatArgs(m.Args), ", "))
	}
	b.WriteString(")")
	return b.String()
}

func sortedInts(m map[int]Definition) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

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
	"sort"
	"strings"

	"github.com/dimod/di/internal/direflect"
)

// Definition is an immutable recipe for building one entry.
type Definition interface {
	// Name returns the entry name the definition was resolved for. Nested
	// definitions (constructor arguments, properties) have no name.
	Name() string

	// WithName returns a copy of the definition bound to name.
	WithName(name string) Definition

	// String describes the definition for diagnostics.
	String() string
}

// Extender is implemented by definitions that build on another definition:
// by default the one registered under the same name in a lower priority
// source.
type Extender interface {
	Definition

	// ParentName returns the name of the entry this definition extends, or ""
	// if it extends nothing.
	ParentName() string

	// Extend returns a new definition merged with parent. Parent is nil when
	// no source has a definition for ParentName.
	Extend(parent Definition) (Definition, error)
}

// Helper is implemented by values that build a definition for an entry, such
// as the fluent helpers of the root package.
type Helper interface {
	Definition(name string) (Definition, error)
}

// RequestedEntry is injected into factory parameters of this type. It
// describes the entry the factory is building.
type RequestedEntry interface {
	Name() string
}

// Value is a literal returned as-is.
type Value struct {
	EntryName string
	Value     interface{}
}

var _ Definition = (*Value)(nil)

// Name returns the entry name.
func (d *Value) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *Value) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

func (d *Value) String() string {
	return fmt.Sprintf("Value (%#v)", d.Value)
}

// Reference redirects to another entry.
type Reference struct {
	EntryName string
	Target    string

	// Optional references resolve to nil instead of failing when the target
	// does not exist.
	Optional bool
}

var _ Definition = (*Reference)(nil)

// Name returns the entry name.
func (d *Reference) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *Reference) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

func (d *Reference) String() string {
	if d.Optional {
		return fmt.Sprintf("get(%s, optional)", d.Target)
	}
	return fmt.Sprintf("get(%s)", d.Target)
}

// EnvironmentVariable reads an environment variable.
type EnvironmentVariable struct {
	EntryName string
	Variable  string

	// Optional variables resolve to Default (nil if unset) when the variable
	// is missing. Required variables fail.
	Optional bool
	Default  Definition

	// Cast names the type the raw string is converted to: "bool", "int",
	// "float64", "duration"... Empty keeps the string.
	Cast string
}

var _ Definition = (*EnvironmentVariable)(nil)

// Name returns the entry name.
func (d *EnvironmentVariable) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *EnvironmentVariable) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

func (d *EnvironmentVariable) String() string {
	var b strings.Builder
	b.WriteString("Environment variable (\n")
	fmt.Fprintf(&b, "    variable = %s\n", d.Variable)
	fmt.Fprintf(&b, "    optional = %s\n", yesNo(d.Optional))
	if d.Default != nil {
		fmt.Fprintf(&b, "    default = %s\n", indent(d.Default.String()))
	}
	if d.Cast != "" {
		fmt.Fprintf(&b, "    cast = %s\n", d.Cast)
	}
	b.WriteString(")")
	return b.String()
}

// Factory calls a function to build the entry. Parameters not listed in
// Parameters are matched against entries by their declared type.
type Factory struct {
	EntryName string

	// Callable is the function to call. When nil, CallableName names a
	// function of the Registry.
	Callable     interface{}
	CallableName string

	Parameters map[int]Definition
	Shared     *bool
}

var _ Definition = (*Factory)(nil)

// Name returns the entry name.
func (d *Factory) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *Factory) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

// IsShared reports whether the result is cached by the container.
func (d *Factory) IsShared() bool { return isTrueOrUnset(d.Shared) }

// Func returns a printable name for the callable.
func (d *Factory) Func() string {
	if d.CallableName != "" {
		return d.CallableName
	}
	return direflect.FuncName(d.Callable)
}

func (d *Factory) String() string {
	return fmt.Sprintf("Factory (%s%s)", d.Func(), formatArgs(d.Parameters))
}

// Decorator wraps the definition previously registered for the same entry.
// The callable receives the decorated value as its first parameter.
type Decorator struct {
	EntryName    string
	Callable     interface{}
	CallableName string

	// Parameters are indexed like the callable's parameters; index 0 is the
	// decorated value and is ignored.
	Parameters map[int]Definition
	Shared     *bool

	// Decorated is the definition being decorated, set by Extend.
	Decorated Definition
}

var _ Extender = (*Decorator)(nil)

// Name returns the entry name.
func (d *Decorator) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *Decorator) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

// IsShared reports whether the result is cached by the container.
func (d *Decorator) IsShared() bool { return isTrueOrUnset(d.Shared) }

// Func returns a printable name for the callable.
func (d *Decorator) Func() string {
	if d.CallableName != "" {
		return d.CallableName
	}
	return direflect.FuncName(d.Callable)
}

// ParentName returns the decorated entry, which is always the entry itself.
func (d *Decorator) ParentName() string { return d.EntryName }

// Extend returns a copy decorating parent.
func (d *Decorator) Extend(parent Definition) (Definition, error) {
	if parent == nil {
		return nil, InvalidDefinitionf(d.EntryName, "decorator %s has no previous definition to decorate", d.Func())
	}
	c := *d
	c.Decorated = parent
	return &c, nil
}

func (d *Decorator) String() string {
	decorated := "<none>"
	if d.Decorated != nil {
		decorated = d.Decorated.String()
	}
	return fmt.Sprintf("Decorate (%s) (\n    %s\n)", d.Func(), indent(decorated))
}

// String is an expression whose {placeholders} are replaced by the string
// form of the named entries.
type String struct {
	EntryName  string
	Expression string
}

var _ Definition = (*String)(nil)

// Name returns the entry name.
func (d *String) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *String) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

func (d *String) String() string {
	return fmt.Sprintf("string(%q)", d.Expression)
}

// Array resolves each of its values and returns them as a []interface{}.
type Array struct {
	EntryName string
	Values    []Definition
}

var _ Definition = (*Array)(nil)

// Name returns the entry name.
func (d *Array) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *Array) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

func (d *Array) String() string {
	var b strings.Builder
	b.WriteString("[\n")
	for i, v := range d.Values {
		fmt.Fprintf(&b, "    %d => %s,\n", i, indent(v.String()))
	}
	b.WriteString("]")
	return b.String()
}

// ArrayExtension appends values to the array registered for the same entry
// in a lower priority source.
type ArrayExtension struct {
	EntryName string
	Values    []Definition
}

var _ Extender = (*ArrayExtension)(nil)

// Name returns the entry name.
func (d *ArrayExtension) Name() string { return d.EntryName }

// WithName returns a copy bound to name.
func (d *ArrayExtension) WithName(name string) Definition {
	c := *d
	c.EntryName = name
	return &c
}

// ParentName returns the extended entry, which is always the entry itself.
func (d *ArrayExtension) ParentName() string { return d.EntryName }

// Extend returns an Array holding the parent's values followed by these.
func (d *ArrayExtension) Extend(parent Definition) (Definition, error) {
	base, ok := parent.(*Array)
	if !ok {
		return nil, InvalidDefinitionf(d.EntryName, "values can only be added to an array, found %v", describe(parent))
	}
	values := make([]Definition, 0, len(base.Values)+len(d.Values))
	values = append(values, base.Values...)
	values = append(values, d.Values...)
	return &Array{EntryName: d.EntryName, Values: values}, nil
}

func (d *ArrayExtension) String() string {
	return "add(" + (&Array{Values: d.Values}).String() + ")"
}

// Bool returns a pointer to b, for the optional flags of definitions.
func Bool(b bool) *bool { return &b }

// IsShared reports whether the value built from def is cached by the
// container. Only factories, decorators and objects can opt out.
func IsShared(def Definition) bool {
	if s, ok := def.(interface{ IsShared() bool }); ok {
		return s.IsShared()
	}
	return true
}

func isTrueOrUnset(b *bool) bool { return b == nil || *b }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n    ")
}

func describe(d Definition) string {
	if d == nil {
		return "nothing"
	}
	return d.String()
}

func formatArgs(args map[int]Definition) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]int, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("$%d = %s", k, args[k])
	}
	return ", " + strings.Join(parts, ", ")
}

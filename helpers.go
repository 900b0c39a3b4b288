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

package di

import (
	"fmt"
	"reflect"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/internal/direflect"
)

// _normalizer normalizes nested arguments. Classes are registered when the
// whole entry is normalized by the builder.
var _normalizer definition.Normalizer

// Value stores v verbatim. Use it for functions stored as values, which
// would otherwise become factories.
func Value(v interface{}) definition.Definition {
	return &definition.Value{Value: v}
}

// Ref refers to another entry.
func Ref(name string) definition.Definition {
	return &definition.Reference{Target: name}
}

// OptionalRef refers to another entry, resolving to nil when it does not
// exist.
func OptionalRef(name string) definition.Definition {
	return &definition.Reference{Target: name, Optional: true}
}

// String expands the {entry} placeholders of expr with the string form of
// other entries.
func String(expr string) definition.Definition {
	return &definition.String{Expression: expr}
}

// Add appends values to the array defined for the same entry by the
// previous definition sources.
func Add(values ...interface{}) definition.Helper {
	return addHelper(values)
}

type addHelper []interface{}

func (h addHelper) Definition(name string) (definition.Definition, error) {
	values, err := normalizeList(h)
	if err != nil {
		return nil, err
	}
	return &definition.ArrayExtension{EntryName: name, Values: values}, nil
}

// EnvHelper defines an entry read from an environment variable.
type EnvHelper struct {
	variable   string
	optional   bool
	def        interface{}
	hasDefault bool
	cast       string
}

var _ definition.Helper = (*EnvHelper)(nil)

// Env reads the environment variable. The entry fails to resolve when the
// variable is not set, unless a default is given or it is optional.
func Env(variable string) *EnvHelper {
	return &EnvHelper{variable: variable}
}

// Default resolves v when the variable is not set. v may be a definition.
func (h *EnvHelper) Default(v interface{}) *EnvHelper {
	h.def, h.hasDefault = v, true
	return h
}

// Optional resolves nil when the variable is not set.
func (h *EnvHelper) Optional() *EnvHelper {
	h.optional = true
	return h
}

// Cast converts the variable to a type named by env.Casts, such as "int"
// or "duration".
func (h *EnvHelper) Cast(to string) *EnvHelper {
	h.cast = to
	return h
}

// Definition builds the definition of entry name.
func (h *EnvHelper) Definition(name string) (definition.Definition, error) {
	d := &definition.EnvironmentVariable{
		EntryName: name,
		Variable:  h.variable,
		Optional:  h.optional || h.hasDefault,
		Cast:      h.cast,
	}
	if h.hasDefault {
		def, err := _normalizer.Normalize("", h.def)
		if err != nil {
			return nil, err
		}
		d.Default = def
	}
	return d, nil
}

// ObjectHelper defines an entry built from a class.
type ObjectHelper struct {
	class    string
	typ      reflect.Type
	autowire bool
	extends  *string

	ctor    map[int]interface{}
	props   map[string]interface{}
	methods []methodHelper

	lazy   *bool
	shared *bool
}

type methodHelper struct {
	name string
	args []interface{}
}

var _ definition.Helper = (*ObjectHelper)(nil)

// Create builds an instance of class: a class name, a reflect.Type, or a
// value whose type is the class, such as (*Mailer)(nil). Without class the
// entry name is the class name.
//
// Nothing is inferred: constructor parameters must all be given. See
// Autowire.
func Create(class ...interface{}) *ObjectHelper {
	h := &ObjectHelper{}
	if len(class) > 0 {
		switch c := class[0].(type) {
		case string:
			h.class = c
		case reflect.Type:
			h.typ = c
		case nil:
		default:
			h.typ = reflect.TypeOf(c)
		}
	}
	return h
}

// CreateType is Create for the class of type T.
func CreateType[T any]() *ObjectHelper {
	return &ObjectHelper{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// Autowire is Create, with the constructor parameters nobody configured
// inferred from their types.
func Autowire(class ...interface{}) *ObjectHelper {
	h := Create(class...)
	h.autowire = true
	return h
}

// AutowireType is Autowire for the class of type T.
func AutowireType[T any]() *ObjectHelper {
	h := CreateType[T]()
	h.autowire = true
	return h
}

// Constructor sets the constructor arguments, in order.
func (h *ObjectHelper) Constructor(args ...interface{}) *ObjectHelper {
	for i, arg := range args {
		h.Parameter(i, arg)
	}
	return h
}

// Parameter sets the constructor argument at index i.
func (h *ObjectHelper) Parameter(i int, v interface{}) *ObjectHelper {
	if h.ctor == nil {
		h.ctor = make(map[int]interface{})
	}
	h.ctor[i] = v
	return h
}

// Property sets the exported field name after construction.
func (h *ObjectHelper) Property(name string, v interface{}) *ObjectHelper {
	if h.props == nil {
		h.props = make(map[string]interface{})
	}
	h.props[name] = v
	return h
}

// Method calls the exported method name after construction. Parameters left
// out are inferred from their types.
func (h *ObjectHelper) Method(name string, args ...interface{}) *ObjectHelper {
	h.methods = append(h.methods, methodHelper{name: name, args: args})
	return h
}

// Lazy returns a proxy building the instance on first use. The class must
// be an interface or a function type.
func (h *ObjectHelper) Lazy() *ObjectHelper {
	h.lazy = definition.Bool(true)
	return h
}

// Unshared builds a new instance on every request.
func (h *ObjectHelper) Unshared() *ObjectHelper {
	h.shared = definition.Bool(false)
	return h
}

// Extend inherits the settings left unset from the definition of entry
// parent. With an empty parent, the definition of the same entry in the
// previous definition sources is extended.
func (h *ObjectHelper) Extend(parent string) *ObjectHelper {
	h.extends = &parent
	return h
}

// Definition builds the definition of entry name.
func (h *ObjectHelper) Definition(name string) (definition.Definition, error) {
	d := &definition.Object{
		EntryName: name,
		ClassName: h.class,
		Type:      h.typ,
		Lazy:      h.lazy,
		Shared:    h.shared,
		Autowire:  h.autowire,
	}
	if h.typ != nil && h.class == "" {
		d.ClassName = direflect.TypeName(h.typ)
	}
	if h.extends != nil {
		d.Extends = *h.extends
		if d.Extends == "" {
			d.Extends = name
		}
	}

	var err error
	if d.Constructor, err = _normalizer.NormalizeAll(h.ctor); err != nil {
		return nil, fmt.Errorf("constructor of %q: %w", name, err)
	}
	if h.props != nil {
		d.Properties = make(map[string]definition.Definition, len(h.props))
		for prop, v := range h.props {
			if d.Properties[prop], err = _normalizer.Normalize("", v); err != nil {
				return nil, fmt.Errorf("property %q of %q: %w", prop, name, err)
			}
		}
	}
	for _, m := range h.methods {
		args, err := _normalizer.NormalizeAll(positional(m.args))
		if err != nil {
			return nil, fmt.Errorf("method %q of %q: %w", m.name, name, err)
		}
		d.Methods = append(d.Methods, definition.MethodCall{Method: m.name, Args: args})
	}
	return d, nil
}

// FactoryHelper defines an entry returned by a function.
type FactoryHelper struct {
	fn     interface{}
	name   string
	params map[int]interface{}
	shared *bool
}

var _ definition.Helper = (*FactoryHelper)(nil)

// Factory calls fn to build the entry. fn is a function, or the name of a
// function registered with Funcs. Its parameters are inferred from their
// types, unless set with Parameter. fn may return an error as its last
// result.
func Factory(fn interface{}) *FactoryHelper {
	if name, ok := fn.(string); ok {
		return &FactoryHelper{name: name}
	}
	return &FactoryHelper{fn: fn}
}

// Parameter sets the parameter at index i.
func (h *FactoryHelper) Parameter(i int, v interface{}) *FactoryHelper {
	if h.params == nil {
		h.params = make(map[int]interface{})
	}
	h.params[i] = v
	return h
}

// Unshared calls the factory on every request.
func (h *FactoryHelper) Unshared() *FactoryHelper {
	h.shared = definition.Bool(false)
	return h
}

// Definition builds the definition of entry name.
func (h *FactoryHelper) Definition(name string) (definition.Definition, error) {
	params, err := _normalizer.NormalizeAll(h.params)
	if err != nil {
		return nil, fmt.Errorf("parameters of %q: %w", name, err)
	}
	return &definition.Factory{
		EntryName:    name,
		Callable:     h.fn,
		CallableName: h.name,
		Parameters:   params,
		Shared:       h.shared,
	}, nil
}

// DecoratorHelper defines a function applied to the previous definition of
// an entry.
type DecoratorHelper struct {
	FactoryHelper
}

// Decorate calls fn with the value built by the definition of the same
// entry in the previous definition sources, and resolves to its result.
// Parameters after the first are inferred like those of factories.
func Decorate(fn interface{}) *DecoratorHelper {
	return &DecoratorHelper{FactoryHelper: *Factory(fn)}
}

// Parameter sets the parameter at index i, i > 0.
func (h *DecoratorHelper) Parameter(i int, v interface{}) *DecoratorHelper {
	h.FactoryHelper.Parameter(i, v)
	return h
}

// Unshared applies the decorator on every request.
func (h *DecoratorHelper) Unshared() *DecoratorHelper {
	h.FactoryHelper.Unshared()
	return h
}

// Definition builds the definition of entry name.
func (h *DecoratorHelper) Definition(name string) (definition.Definition, error) {
	params, err := _normalizer.NormalizeAll(h.params)
	if err != nil {
		return nil, fmt.Errorf("parameters of decorator %q: %w", name, err)
	}
	return &definition.Decorator{
		EntryName:    name,
		Callable:     h.fn,
		CallableName: h.name,
		Parameters:   params,
		Shared:       h.shared,
	}, nil
}

func normalizeList(values []interface{}) ([]definition.Definition, error) {
	defs := make([]definition.Definition, len(values))
	for i, v := range values {
		d, err := _normalizer.Normalize("", v)
		if err != nil {
			return nil, err
		}
		defs[i] = d
	}
	return defs, nil
}

func positional(args []interface{}) map[int]interface{} {
	if len(args) == 0 {
		return nil
	}
	m := make(map[int]interface{}, len(args))
	for i, arg := range args {
		m[i] = arg
	}
	return m
}

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

	"github.com/dimod/di/internal/direflect"
)

// Class is a type the container knows how to instantiate: either through a
// constructor function, or from the zero value of a struct.
type Class struct {
	Name string

	// Type is the type of the instances, the constructor's first result.
	Type reflect.Type

	// Implicit classes were discovered while autowiring rather than
	// registered by the user.
	Implicit bool

	ctor reflect.Value
}

// Constructor returns the constructor function, if the class has one.
func (c *Class) Constructor() (reflect.Value, bool) {
	return c.ctor, c.ctor.IsValid()
}

// Params returns the constructor parameter types.
func (c *Class) Params() []reflect.Type {
	if !c.ctor.IsValid() {
		return nil
	}
	t := c.ctor.Type()
	params := make([]reflect.Type, t.NumIn())
	for i := range params {
		params[i] = t.In(i)
	}
	return params
}

// Variadic reports whether the last constructor parameter is variadic.
func (c *Class) Variadic() bool {
	return c.ctor.IsValid() && c.ctor.Type().IsVariadic()
}

// Instantiable reports whether New can build an instance.
func (c *Class) Instantiable() bool {
	if c.ctor.IsValid() {
		return true
	}
	_, ok := c.Struct()
	return ok
}

// Struct returns the struct type whose exported fields are the injectable
// properties of the class.
func (c *Class) Struct() (reflect.Type, bool) {
	t := c.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	return t, true
}

// New builds an instance. Args are passed to the constructor; a class with
// no constructor accepts no arguments.
func (c *Class) New(args []reflect.Value) (reflect.Value, error) {
	if !c.ctor.IsValid() {
		st, ok := c.Struct()
		if !ok {
			return reflect.Value{}, fmt.Errorf("type %v is not instantiable", c.Name)
		}
		if len(args) > 0 {
			return reflect.Value{}, fmt.Errorf("type %v has no constructor but %d arguments were given", c.Name, len(args))
		}
		ptr := reflect.New(st)
		if c.Type.Kind() == reflect.Ptr {
			return ptr, nil
		}
		return ptr.Elem(), nil
	}

	t := c.ctor.Type()
	var out []reflect.Value
	switch {
	case t.IsVariadic() && len(args) == t.NumIn():
		out = c.ctor.CallSlice(args)
	default:
		out = c.ctor.Call(args)
	}
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	return out[0], nil
}

// Registry maps class names to classes and function names to functions. It
// is the only place where names are turned back into Go types.
type Registry struct {
	classes map[string]*Class
	funcs   map[string]interface{}
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*Class),
		funcs:   make(map[string]interface{}),
	}
}

// Register adds a class. v is either a constructor function returning the
// instance (and optionally an error), a reflect.Type, or a value whose type
// is registered, typically a nil pointer such as (*Mailer)(nil).
//
// The class is registered under its canonical type name. A class known only
// by its type is replaced when a constructor for the same type is registered.
func (r *Registry) Register(v interface{}) (*Class, error) {
	class, err := newClass(v)
	if err != nil {
		return nil, err
	}
	return r.add(class.Name, class), nil
}

// RegisterAs adds a class under an explicit name, in addition to its
// canonical type name.
func (r *Registry) RegisterAs(name string, v interface{}) (*Class, error) {
	class, err := newClass(v)
	if err != nil {
		return nil, err
	}
	r.add(class.Name, class)
	named := *class
	named.Name = name
	return r.add(name, &named), nil
}

// RegisterImplicit registers t as a zero-value class discovered while
// autowiring, unless a class of that name exists.
func (r *Registry) RegisterImplicit(t reflect.Type) *Class {
	name := direflect.TypeName(t)
	if existing, ok := r.classes[name]; ok {
		return existing
	}
	class := &Class{Name: name, Type: t, Implicit: true}
	r.classes[name] = class
	return class
}

func (r *Registry) add(name string, class *Class) *Class {
	if existing, ok := r.classes[name]; ok {
		if existing.ctor.IsValid() || !class.ctor.IsValid() {
			existing.Implicit = existing.Implicit && class.Implicit
			return existing
		}
	}
	r.classes[name] = class
	return class
}

// Class returns the class registered under name.
func (r *Registry) Class(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// ClassNames returns the registered class names, sorted.
func (r *Registry) ClassNames() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterFunc adds a named function, usable as a factory or decorator by
// name (from definition files, or from compiled containers).
func (r *Registry) RegisterFunc(name string, fn interface{}) error {
	if reflect.TypeOf(fn) == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("%q must be a function, got %T", name, fn)
	}
	r.funcs[name] = fn
	return nil
}

// Func returns the function registered under name.
func (r *Registry) Func(name string) (interface{}, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

func newClass(v interface{}) (*Class, error) {
	var t reflect.Type
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("cannot register untyped nil")
	case reflect.Type:
		return &Class{Name: direflect.TypeName(v), Type: v}, nil
	default:
		t = reflect.TypeOf(v)
	}

	if t.Kind() != reflect.Func {
		return &Class{Name: direflect.TypeName(t), Type: t}, nil
	}

	ctor := reflect.ValueOf(v)
	switch {
	case ctor.Kind() != reflect.Func || ctor.IsNil():
		return nil, fmt.Errorf("constructor of type %v must be a non-nil function value", t)
	case t.NumOut() == 0 || t.NumOut() > 2:
		return nil, fmt.Errorf("constructor %v must return a value and optionally an error", direflect.FuncName(v))
	case t.NumOut() == 2 && t.Out(1) != direflect.ErrorType:
		return nil, fmt.Errorf("second result of constructor %v must be an error", direflect.FuncName(v))
	case direflect.IsErr(t.Out(0)) && t.Out(0).Kind() == reflect.Interface:
		return nil, fmt.Errorf("constructor %v must not return only an error", direflect.FuncName(v))
	}
	return &Class{Name: direflect.TypeName(t.Out(0)), Type: t.Out(0), ctor: ctor}, nil
}

// Coerce converts v so that it can be assigned to a value of type t: nil
// becomes the zero value of nillable types, numbers are converted between
// numeric kinds (definition files decode every integer as int), and
// []interface{} is converted element-wise to other slice types.
func Coerce(v interface{}, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %v", t)
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return rv.Convert(t), nil
	}
	if rv.Kind() == reflect.String && t.Kind() == reflect.String {
		return rv.Convert(t), nil
	}
	if rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := Coerce(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use value of type %v as %v", rv.Type(), t)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

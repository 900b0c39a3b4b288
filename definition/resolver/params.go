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

package resolver

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/internal/direflect"
)

var _requestedEntryType = reflect.TypeOf((*definition.RequestedEntry)(nil)).Elem()

// params resolves the parameters of constructors, factories and methods.
type params struct {
	d         *Dispatcher
	container Container
	hints     definition.HintResolver
}

// paramSource is where the value of a parameter comes from.
type paramSource struct {
	// override is a raw value passed to Make.
	override interface{}
	hasValue bool

	// literal overrides are used as-is, even when they are definitions.
	literal bool

	def definition.Definition
}

// injectsContainer reports whether the container itself is injected into a
// parameter of type t.
func (p *params) injectsContainer(t reflect.Type) bool {
	return p.container != nil && InjectsContainer(reflect.TypeOf(p.container), t)
}

// InjectsContainer reports whether a container of type container is injected
// into parameters of type t: t must be a non-empty interface it implements.
func InjectsContainer(container, t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() > 0 && container.Implements(t)
}

// value resolves src for a parameter of type t.
func (p *params) value(src paramSource, t reflect.Type) (reflect.Value, error) {
	if src.hasValue {
		if src.literal {
			return definition.Coerce(src.override, t)
		}
		if def, ok := src.override.(definition.Definition); ok {
			return p.d.ResolveAs(def, t)
		}
		return definition.Coerce(src.override, t)
	}
	return p.d.ResolveAs(src.def, t)
}

// build assembles the argument list of a function with the given parameter
// types. lookup returns the explicit source of parameter i, if any; hint
// returns the inferred definition.
//
// A variadic last parameter with no value is left out of the list.
func (p *params) build(
	owner string,
	types []reflect.Type,
	variadic bool,
	lookup func(i int) (paramSource, bool),
	hint func(i int, t reflect.Type) (definition.Definition, error),
) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(types))
	for i, t := range types {
		last := variadic && i == len(types)-1

		src, ok := lookup(i)
		if !ok && p.injectsContainer(t) {
			args = append(args, reflect.ValueOf(p.container))
			continue
		}
		if !ok && hint != nil {
			def, err := hint(i, t)
			if err != nil {
				return nil, err
			}
			if def != nil {
				src, ok = paramSource{def: def}, true
			}
		}
		if !ok {
			if last {
				break
			}
			return nil, definition.InvalidDefinitionf(owner,
				"parameter %d (%v) of %s has no value defined or guessable", i, t, owner)
		}

		v, err := p.value(src, t)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot resolve parameter %d (%v) of %s", i, t, owner)
		}
		args = append(args, v)
	}
	return args, nil
}

func (p *params) typeHint(t reflect.Type) (definition.Definition, error) {
	return TypeHint(p.hints, t)
}

// TypeHint asks hints for the value of a parameter of type t and falls back
// to a reference to the entry named after t. hints may be nil.
func TypeHint(hints definition.HintResolver, t reflect.Type) (definition.Definition, error) {
	if hints != nil {
		def, err := hints.TypeHint(t)
		if err != nil || def != nil {
			return def, err
		}
	}
	if named(t) {
		return &definition.Reference{Target: direflect.TypeName(t)}, nil
	}
	return nil, nil
}

func named(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() != "" && t.Name() != ""
}

// callFunc invokes fn and unwraps its (T) or (T, error) results.
func callFunc(fn reflect.Value, args []reflect.Value) (interface{}, error) {
	var out []reflect.Value
	t := fn.Type()
	if t.IsVariadic() && len(args) == t.NumIn() {
		out = fn.CallSlice(args)
	} else {
		out = fn.Call(args)
	}

	switch {
	case len(out) == 0:
		return nil, nil
	case direflect.IsErr(out[len(out)-1].Type()):
		if err, _ := out[len(out)-1].Interface().(error); err != nil {
			return nil, err
		}
		if len(out) == 1 {
			return nil, nil
		}
	}
	return out[0].Interface(), nil
}

func funcParams(t reflect.Type) []reflect.Type {
	types := make([]reflect.Type, t.NumIn())
	for i := range types {
		types[i] = t.In(i)
	}
	return types
}

func checkFunc(owner string, fn interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return reflect.Value{}, definition.InvalidDefinitionf(owner, "%s is not a function", describeFunc(fn))
	}
	return v, nil
}

func describeFunc(fn interface{}) string {
	if fn == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", fn)
}

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
	"reflect"

	"github.com/dimod/di/internal/direflect"
)

// Normalizer turns the loose values found in definition maps (literals,
// helpers, functions, slices) into definitions, registering the classes they
// reference.
type Normalizer struct {
	Registry *Registry
}

// Normalize builds the definition for entry name from v:
//
//   - a Definition is bound to name;
//   - a Helper builds the definition;
//   - a function becomes a Factory;
//   - a []interface{} becomes an Array of normalized values;
//   - anything else is a Value.
func (n Normalizer) Normalize(name string, v interface{}) (Definition, error) {
	var def Definition
	switch v := v.(type) {
	case nil:
		def = &Value{EntryName: name}
	case Definition:
		def = v.WithName(name)
	case Helper:
		d, err := v.Definition(name)
		if err != nil {
			return nil, err
		}
		def = d
	case []interface{}:
		values := make([]Definition, len(v))
		for i, item := range v {
			d, err := n.Normalize("", item)
			if err != nil {
				return nil, err
			}
			values[i] = d
		}
		def = &Array{EntryName: name, Values: values}
	default:
		if reflect.TypeOf(v).Kind() == reflect.Func {
			def = &Factory{EntryName: name, Callable: v}
		} else {
			def = &Value{EntryName: name, Value: v}
		}
	}

	if err := n.register(def); err != nil {
		return nil, err
	}
	return def, nil
}

// NormalizeAll normalizes positional arguments.
func (n Normalizer) NormalizeAll(args map[int]interface{}) (map[int]Definition, error) {
	if args == nil {
		return nil, nil
	}
	out := make(map[int]Definition, len(args))
	for i, arg := range args {
		d, err := n.Normalize("", arg)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (n Normalizer) register(def Definition) error {
	if n.Registry == nil {
		return nil
	}
	return Walk(def, func(d Definition) error {
		obj, ok := d.(*Object)
		if !ok || obj.Type == nil {
			return nil
		}
		if obj.ClassName != "" && obj.ClassName != direflect.TypeName(obj.Type) {
			_, err := n.Registry.RegisterAs(obj.ClassName, obj.Type)
			return err
		}
		_, err := n.Registry.Register(obj.Type)
		return err
	})
}

// Walk calls fn for def and, depth first, for every definition nested in it.
func Walk(def Definition, fn func(Definition) error) error {
	if def == nil {
		return nil
	}
	if err := fn(def); err != nil {
		return err
	}

	switch d := def.(type) {
	case *EnvironmentVariable:
		return Walk(d.Default, fn)
	case *Factory:
		return walkArgs(d.Parameters, fn)
	case *Decorator:
		if err := walkArgs(d.Parameters, fn); err != nil {
			return err
		}
		return Walk(d.Decorated, fn)
	case *Array:
		return walkList(d.Values, fn)
	case *ArrayExtension:
		return walkList(d.Values, fn)
	case *Object:
		if err := walkArgs(d.Constructor, fn); err != nil {
			return err
		}
		for _, p := range d.Properties {
			if err := Walk(p, fn); err != nil {
				return err
			}
		}
		for _, m := range d.Methods {
			if err := walkArgs(m.Args, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkArgs(args map[int]Definition, fn func(Definition) error) error {
	for _, i := range sortedInts(args) {
		if err := Walk(args[i], fn); err != nil {
			return err
		}
	}
	return nil
}

func walkList(values []Definition, fn func(Definition) error) error {
	for _, v := range values {
		if err := Walk(v, fn); err != nil {
			return err
		}
	}
	return nil
}

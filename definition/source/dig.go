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
	"fmt"
	"reflect"

	"go.uber.org/dig"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/internal/direflect"
)

// Dig exposes the types of a dig container as factory definitions named
// after the types. dig builds and caches the values; the container only
// asks for them.
type Dig struct {
	c    *dig.Container
	defs map[string]definition.Definition
}

var _ Source = (*Dig)(nil)

// NewDig returns a source over c exposing types. Further types are exposed
// with Expose or Provide.
func NewDig(c *dig.Container, types ...reflect.Type) *Dig {
	d := &Dig{c: c, defs: make(map[string]definition.Definition)}
	d.Expose(types...)
	return d
}

// Expose makes values of the given types, which must be provided to the
// dig container, available as entries.
func (d *Dig) Expose(types ...reflect.Type) {
	for _, t := range types {
		name := direflect.TypeName(t)
		d.defs[name] = &definition.Factory{EntryName: name, Callable: d.factory(t)}
	}
}

// Provide adds ctor to the dig container and exposes its results. Fields of
// dig.Out results are exposed unless they are named or grouped.
func (d *Dig) Provide(ctor interface{}, opts ...dig.ProvideOption) error {
	if err := d.c.Provide(ctor, opts...); err != nil {
		return err
	}
	t := reflect.TypeOf(ctor)
	for i := 0; i < t.NumOut(); i++ {
		out := t.Out(i)
		switch {
		case direflect.IsErr(out):
		case dig.IsOut(out):
			for j := 0; j < out.NumField(); j++ {
				f := out.Field(j)
				if f.Anonymous || f.Tag.Get("name") != "" || f.Tag.Get("group") != "" {
					continue
				}
				d.Expose(f.Type)
			}
		default:
			d.Expose(out)
		}
	}
	return nil
}

// factory returns a func() (T, error) invoking the dig container.
func (d *Dig) factory(t reflect.Type) interface{} {
	fnType := reflect.FuncOf(nil, []reflect.Type{t, direflect.ErrorType}, false)
	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		result := reflect.New(t).Elem()
		receive := reflect.MakeFunc(reflect.FuncOf([]reflect.Type{t}, nil, false), func(args []reflect.Value) []reflect.Value {
			result.Set(args[0])
			return nil
		})

		errV := reflect.Zero(direflect.ErrorType)
		if err := d.c.Invoke(receive.Interface()); err != nil {
			err = fmt.Errorf("dig could not build %v: %w", t, err)
			errV = reflect.ValueOf(&err).Elem()
		}
		return []reflect.Value{result, errV}
	}).Interface()
}

// GetDefinition implements Source.
func (d *Dig) GetDefinition(name string) (definition.Definition, error) {
	return d.defs[name], nil
}

// Definitions implements Source.
func (d *Dig) Definitions() (map[string]definition.Definition, error) {
	out := make(map[string]definition.Definition, len(d.defs))
	for name, def := range d.defs {
		out[name] = def
	}
	return out, nil
}

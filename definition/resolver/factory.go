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
	"reflect"

	"github.com/pkg/errors"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/dievent"
)

type factoryResolver struct {
	params   *params
	registry *definition.Registry
}

func (r *factoryResolver) callable(owner string, fn interface{}, name string) (reflect.Value, error) {
	if fn == nil && name != "" {
		var ok bool
		if fn, ok = r.registry.Func(name); !ok {
			return reflect.Value{}, definition.InvalidDefinitionf(owner, "the function %q is not registered", name)
		}
	}
	if fn == nil {
		return reflect.Value{}, definition.InvalidDefinitionf(owner, "the factory has no callable")
	}
	return checkFunc(owner, fn)
}

func (r *factoryResolver) Resolve(def definition.Definition, args map[int]interface{}) (interface{}, error) {
	f := def.(*definition.Factory)
	fn, err := r.callable(f.Name(), f.Callable, f.CallableName)
	if err != nil {
		return nil, err
	}
	return r.invoke(def, fn, f.Parameters, args, nil)
}

// invoke calls fn. Parameter 0 receives previous when it is valid.
func (r *factoryResolver) invoke(
	def definition.Definition,
	fn reflect.Value,
	explicit map[int]definition.Definition,
	overrides map[int]interface{},
	previous *reflect.Value,
) (interface{}, error) {
	t := fn.Type()
	types := funcParams(t)
	first := 0
	if previous != nil {
		if len(types) == 0 {
			return nil, definition.InvalidDefinitionf(def.Name(), "a decorator must accept the decorated value")
		}
		first = 1
	}

	lookup := func(i int) (paramSource, bool) {
		i += first
		if v, ok := overrides[i]; ok {
			return paramSource{override: v, hasValue: true}, true
		}
		if d, ok := explicit[i]; ok {
			return paramSource{def: d}, true
		}
		if types[i] == _requestedEntryType {
			return paramSource{override: def, hasValue: true, literal: true}, true
		}
		return paramSource{}, false
	}
	hint := func(_ int, t reflect.Type) (definition.Definition, error) {
		return r.params.typeHint(t)
	}

	args, err := r.params.build(def.Name(), types[first:], t.IsVariadic(), lookup, hint)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		prev, err := definition.Coerce(previous.Interface(), types[0])
		if err != nil {
			return nil, errors.Wrapf(err, "cannot pass the decorated value of %q", def.Name())
		}
		args = append([]reflect.Value{prev}, args...)
	}

	v, err := callFunc(fn, args)
	if err != nil {
		return nil, errors.Wrapf(err, "error while invoking the factory of %q", def.Name())
	}
	return v, nil
}

func (*factoryResolver) IsResolvable(definition.Definition) bool { return true }

type decoratorResolver struct {
	d       *Dispatcher
	factory *factoryResolver
	log     dievent.Logger
}

func (r *decoratorResolver) Resolve(def definition.Definition, args map[int]interface{}) (result interface{}, err error) {
	dec := def.(*definition.Decorator)
	defer func() {
		r.log.LogEvent(&dievent.Decorated{
			Name:          dec.Name(),
			DecoratorName: dec.Func(),
			Err:           err,
		})
	}()

	if dec.Decorated == nil {
		return nil, definition.InvalidDefinitionf(dec.Name(), "the decorator has nothing to decorate")
	}
	fn, err := r.factory.callable(dec.Name(), dec.Callable, dec.CallableName)
	if err != nil {
		return nil, err
	}

	decorated, err := r.d.Resolve(dec.Decorated, args)
	if err != nil {
		return nil, err
	}
	prev := reflect.ValueOf(&decorated).Elem()
	return r.factory.invoke(def, fn, dec.Parameters, nil, &prev)
}

func (r *decoratorResolver) IsResolvable(def definition.Definition) bool {
	dec := def.(*definition.Decorator)
	return dec.Decorated != nil && r.d.IsResolvable(dec.Decorated)
}

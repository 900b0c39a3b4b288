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
	"sort"

	"github.com/pkg/errors"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/proxy"
)

type objectResolver struct {
	d        *Dispatcher
	params   *params
	registry *definition.Registry
	proxies  proxy.Factory
	log      dievent.Logger
}

func (r *objectResolver) class(obj *definition.Object) (*definition.Class, error) {
	name := obj.Class()
	if class, ok := r.registry.Class(name); ok {
		return class, nil
	}
	if obj.Type == nil {
		return nil, definition.InvalidDefinitionf(obj.Name(), "the class %q is not registered", name)
	}
	return r.registry.RegisterAs(name, obj.Type)
}

func (r *objectResolver) Resolve(def definition.Definition, args map[int]interface{}) (interface{}, error) {
	obj := def.(*definition.Object)
	class, err := r.class(obj)
	if err != nil {
		return nil, err
	}
	if !class.Instantiable() {
		return nil, definition.InvalidDefinitionf(obj.Name(), "%s is not instantiable", class.Name)
	}

	if !obj.IsLazy() {
		return r.build(obj, class, args)
	}

	p, err := r.proxies.CreateProxy(class.Type, func() (interface{}, error) {
		return r.build(obj, class, args)
	})
	r.log.LogEvent(&dievent.ProxyCreated{
		Name:  obj.Name(),
		Class: class.Name,
		Eager: err == nil && !proxy.Defers(r.proxies, class.Type),
		Err:   err,
	})
	if err != nil {
		return nil, &definition.InvalidDefinitionError{
			Name:   obj.Name(),
			Reason: "cannot create a lazy proxy",
			Err:    err,
		}
	}
	return p, nil
}

func (r *objectResolver) IsResolvable(def definition.Definition) bool {
	class, ok := r.registry.Class(def.(*definition.Object).Class())
	return ok && class.Instantiable()
}

func (r *objectResolver) build(obj *definition.Object, class *definition.Class, overrides map[int]interface{}) (interface{}, error) {
	owner := obj.Name()
	if owner == "" {
		owner = class.Name
	}

	lookup := func(i int) (paramSource, bool) {
		if v, ok := overrides[i]; ok {
			return paramSource{override: v, hasValue: true}, true
		}
		if d, ok := obj.Constructor[i]; ok {
			return paramSource{def: d}, true
		}
		return paramSource{}, false
	}
	var hint func(int, reflect.Type) (definition.Definition, error)
	if r.params.hints != nil {
		hint = func(i int, _ reflect.Type) (definition.Definition, error) {
			return r.params.hints.ParameterHint(class, i)
		}
	}

	args, err := r.params.build(owner, class.Params(), class.Variadic(), lookup, hint)
	if err != nil {
		return nil, err
	}
	v, err := class.New(args)
	if err != nil {
		return nil, errors.Wrapf(err, "error while constructing %s", owner)
	}
	return r.complete(owner, v, obj)
}

// complete injects the properties of obj into v and calls its methods.
func (r *objectResolver) complete(owner string, v reflect.Value, obj *definition.Object) (interface{}, error) {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	var err error
	if len(obj.Properties) > 0 {
		if v, err = r.inject(owner, v, obj.Properties); err != nil {
			return nil, err
		}
	}
	for _, m := range obj.Methods {
		if err := r.callMethod(owner, v, m); err != nil {
			return nil, err
		}
	}
	return v.Interface(), nil
}

// inject sets the fields of v. Struct values are copied to an addressable
// value first.
func (r *objectResolver) inject(owner string, v reflect.Value, props map[string]definition.Definition) (reflect.Value, error) {
	target := v
	if target.Kind() == reflect.Ptr {
		if target.IsNil() {
			return v, definition.InvalidDefinitionf(owner, "cannot inject properties into a nil %v", v.Type())
		}
		target = target.Elem()
	} else if !target.CanAddr() {
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		v, target = c, c
	}
	if target.Kind() != reflect.Struct {
		return v, definition.InvalidDefinitionf(owner, "cannot inject properties into %v", v.Type())
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := target.FieldByName(name)
		if !field.IsValid() {
			return v, definition.InvalidDefinitionf(owner, "%v has no field %q", target.Type(), name)
		}
		if !field.CanSet() {
			return v, definition.InvalidDefinitionf(owner, "field %q of %v is not exported", name, target.Type())
		}
		value, err := r.d.ResolveAs(props[name], field.Type())
		if err != nil {
			return v, errors.Wrapf(err, "cannot inject field %q of %s", name, owner)
		}
		field.Set(value)
	}
	return v, nil
}

func (r *objectResolver) callMethod(owner string, v reflect.Value, call definition.MethodCall) error {
	m := v.MethodByName(call.Method)
	if !m.IsValid() && v.CanAddr() {
		m = v.Addr().MethodByName(call.Method)
	}
	if !m.IsValid() {
		return definition.InvalidDefinitionf(owner, "%v has no method %q", v.Type(), call.Method)
	}

	t := m.Type()
	lookup := func(i int) (paramSource, bool) {
		d, ok := call.Args[i]
		return paramSource{def: d}, ok
	}
	hint := func(_ int, t reflect.Type) (definition.Definition, error) {
		return r.params.typeHint(t)
	}
	method := owner + "." + call.Method
	args, err := r.params.build(method, funcParams(t), t.IsVariadic(), lookup, hint)
	if err != nil {
		return err
	}
	if _, err := callFunc(m, args); err != nil {
		return errors.Wrapf(err, "error while calling %s", method)
	}
	return nil
}

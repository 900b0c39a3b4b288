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

package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/definition/resolver"
	"github.com/dimod/di/internal/direflect"
	"github.com/dimod/di/internal/gen"
)

var errClosure = errors.New("closures can only be compiled as the definition of an entry")

type routine struct {
	fn     string
	body   string
	refs   []string
	shared bool
}

func (c *Compiler) routine(f *gen.File, diPkg, name string, def definition.Definition) (*routine, error) {
	r := &routine{fn: RoutineName(name), shared: definition.IsShared(def)}
	e := &emitter{c: c, f: f, di: diPkg, entry: name}
	if hasFallback(def) {
		e.printf("return c.Fallback(%q)", name)
	} else {
		x, err := e.value(def)
		if err != nil {
			return r, err
		}
		e.printf("return %s, nil", x)
	}
	r.body, r.refs = e.b.String(), e.refs
	return r, nil
}

// hasFallback reports whether the entry is resolved from its definition at
// run time rather than transcribed. A decorator falls back with the entry
// it decorates.
func hasFallback(def definition.Definition) bool {
	switch d := def.(type) {
	case *definition.Factory:
		return d.CallableName == ""
	case *definition.Decorator:
		return d.CallableName == "" || (d.Decorated != nil && hasFallback(d.Decorated))
	case *definition.Value:
		return !definition.IsPlainData(d.Value)
	}
	return false
}

func (c *Compiler) class(d *definition.Object) (*definition.Class, error) {
	name := d.Class()
	class, ok := c.registry.Class(name)
	if !ok {
		if d.Type == nil {
			return nil, definition.InvalidDefinitionf(d.Name(), "the class %q is not registered", name)
		}
		var err error
		if class, err = c.registry.RegisterAs(name, d.Type); err != nil {
			return nil, err
		}
	}
	if !class.Instantiable() {
		return nil, definition.InvalidDefinitionf(d.Name(), "%s is not instantiable", class.Name)
	}
	return class, nil
}

func (c *Compiler) injectsContainer(t reflect.Type) bool {
	return c.containerType != nil && resolver.InjectsContainer(c.containerType, t)
}

// emitter writes the body of one routine. Every statement that can fail
// declares a fresh variable along with err.
type emitter struct {
	c     *Compiler
	f     *gen.File
	di    string
	entry string
	b     strings.Builder
	n     int
	refs  []string
}

func (e *emitter) printf(format string, args ...interface{}) {
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) tmp(prefix string) string {
	e.n++
	return prefix + strconv.Itoa(e.n)
}

func (e *emitter) check() {
	e.printf("if err != nil {\nreturn nil, err\n}")
}

// value emits the statements building def and returns an expression of the
// result.
func (e *emitter) value(def definition.Definition) (string, error) {
	switch d := def.(type) {
	case *definition.Value:
		if !definition.IsPlainData(d.Value) {
			return "", fmt.Errorf("values of type %T have no literal form", d.Value)
		}
		return e.f.Literal(d.Value)

	case *definition.Reference:
		e.refs = append(e.refs, d.Target)
		get := "Get"
		if d.Optional {
			get = "GetOptional"
		}
		v := e.tmp("v")
		e.printf("%s, err := c.%s(%q)", v, get, d.Target)
		e.check()
		return v, nil

	case *definition.EnvironmentVariable:
		return e.env(d)

	case *definition.String:
		e.refs = append(e.refs, resolver.Placeholders(d.Expression)...)
		v := e.tmp("v")
		e.printf("%s, err := c.Expand(%q)", v, d.Expression)
		e.check()
		return v, nil

	case *definition.Array:
		elems := make([]string, len(d.Values))
		for i, el := range d.Values {
			x, err := e.value(el)
			if err != nil {
				return "", fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = x
		}
		return "[]interface{}{" + strings.Join(elems, ", ") + "}", nil

	case *definition.Factory:
		if d.CallableName == "" {
			return "", errClosure
		}
		args, err := e.args(d.Parameters)
		if err != nil {
			return "", err
		}
		v := e.tmp("v")
		e.printf("%s, err := c.Call(%q, %q, %s)", v, d.CallableName, d.Name(), args)
		e.check()
		return v, nil

	case *definition.Decorator:
		if d.CallableName == "" {
			return "", errClosure
		}
		if d.Decorated == nil {
			return "", definition.InvalidDefinitionf(d.Name(), "the decorator has nothing to decorate")
		}
		prev, err := e.value(d.Decorated)
		if err != nil {
			return "", err
		}
		args, err := e.args(d.Parameters)
		if err != nil {
			return "", err
		}
		v := e.tmp("v")
		e.printf("%s, err := c.Decorate(%q, %q, %s, %s)", v, d.CallableName, d.Name(), prev, args)
		e.check()
		return v, nil

	case *definition.Object:
		return e.object(d)
	}
	return "", fmt.Errorf("definitions of type %T cannot be compiled", def)
}

func (e *emitter) env(d *definition.EnvironmentVariable) (string, error) {
	v := e.tmp("v")
	if d.Default == nil && d.Optional {
		e.printf("%s, _, err := c.Env(%q, %q)", v, d.Variable, d.Cast)
		e.check()
		return v, nil
	}

	ok := e.tmp("ok")
	e.printf("%s, %s, err := c.Env(%q, %q)", v, ok, d.Variable, d.Cast)
	e.check()
	e.printf("if !%s {", ok)
	if d.Default != nil {
		x, err := e.value(d.Default)
		if err != nil {
			return "", err
		}
		e.printf("%s = %s", v, x)
	} else {
		e.printf("return nil, c.EnvNotDefined(%q, %q)", e.entry, d.Variable)
	}
	e.printf("}")
	return v, nil
}

func (e *emitter) args(params map[int]definition.Definition) (string, error) {
	if len(params) == 0 {
		return "nil", nil
	}
	keys := make([]int, 0, len(params))
	for i := range params {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	parts := make([]string, len(keys))
	for j, i := range keys {
		x, err := e.value(params[i])
		if err != nil {
			return "", fmt.Errorf("parameter %d: %w", i, err)
		}
		parts[j] = fmt.Sprintf("%d: %s", i, x)
	}
	return e.di + ".Args{" + strings.Join(parts, ", ") + "}", nil
}

func (e *emitter) object(d *definition.Object) (string, error) {
	class, err := e.c.class(d)
	if err != nil {
		return "", err
	}
	if !d.IsLazy() {
		return e.construct(d, class)
	}

	switch class.Type.Kind() {
	case reflect.Interface, reflect.Func:
	default:
		return "", definition.InvalidDefinitionf(d.Name(), "lazy entries must be interfaces or functions, got %v", class.Type)
	}
	v := e.tmp("v")
	e.printf("%s, err := c.Lazy(%q, %q, func() (interface{}, error) {", v, d.Name(), class.Name)
	o, err := e.construct(d, class)
	if err != nil {
		return "", err
	}
	e.printf("return %s, nil", o)
	e.printf("})")
	e.check()
	return v, nil
}

// method is a method call whose arguments were emitted.
type method struct {
	name string
	typ  reflect.Type
	args []string
}

func (e *emitter) construct(d *definition.Object, class *definition.Class) (string, error) {
	owner := d.Name()
	if owner == "" {
		owner = class.Name
	}

	params := class.Params()
	args := make([]string, 0, len(params))
	for i, t := range params {
		arg, ok := d.Constructor[i]
		if !ok && e.c.injectsContainer(t) {
			args = append(args, "c.Self()")
			continue
		}
		if !ok && e.c.hints != nil {
			hint, err := e.c.hints.ParameterHint(class, i)
			if err != nil {
				return "", err
			}
			arg, ok = hint, hint != nil
		}
		if !ok {
			if class.Variadic() && i == len(params)-1 {
				break
			}
			return "", definition.InvalidDefinitionf(owner,
				"parameter %d (%v) of %s has no value defined or guessable", i, t, owner)
		}
		x, err := e.value(arg)
		if err != nil {
			return "", fmt.Errorf("parameter %d of %s: %w", i, owner, err)
		}
		args = append(args, x)
	}

	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	props := make([]string, len(names))
	for i, name := range names {
		if st, ok := class.Struct(); ok && class.Type.Kind() != reflect.Interface {
			f, ok := st.FieldByName(name)
			if !ok {
				return "", definition.InvalidDefinitionf(owner, "%v has no field %q", st, name)
			}
			if f.PkgPath != "" {
				return "", definition.InvalidDefinitionf(owner, "field %q of %v is not exported", name, st)
			}
		}
		x, err := e.value(d.Properties[name])
		if err != nil {
			return "", fmt.Errorf("field %s of %s: %w", name, owner, err)
		}
		props[i] = x
	}

	methods := make([]method, len(d.Methods))
	for i, call := range d.Methods {
		mt, ok := methodType(class.Type, call.Method)
		if !ok {
			return "", definition.InvalidDefinitionf(owner, "%v has no method %q", class.Type, call.Method)
		}
		margs, err := e.methodArgs(owner+"."+call.Method, mt, call.Args)
		if err != nil {
			return "", err
		}
		methods[i] = method{name: call.Method, typ: mt, args: margs}
	}

	if e.static(class, names, methods) {
		return e.constructStatic(class, args, names, props, methods)
	}
	if class.Implicit {
		return "", fmt.Errorf("%s was discovered by autowiring and cannot be built by name, register it explicitly", class.Name)
	}
	return e.constructDynamic(class, args, names, props, methods), nil
}

func (e *emitter) methodArgs(owner string, mt reflect.Type, explicit map[int]definition.Definition) ([]string, error) {
	var args []string
	for i := 0; i < mt.NumIn(); i++ {
		t := mt.In(i)
		arg, ok := explicit[i]
		if !ok && e.c.injectsContainer(t) {
			args = append(args, "c.Self()")
			continue
		}
		if !ok {
			hint, err := resolver.TypeHint(e.c.hints, t)
			if err != nil {
				return nil, err
			}
			arg, ok = hint, hint != nil
		}
		if !ok {
			if mt.IsVariadic() && i == mt.NumIn()-1 {
				break
			}
			return nil, definition.InvalidDefinitionf(owner,
				"parameter %d (%v) of %s has no value defined or guessable", i, t, owner)
		}
		x, err := e.value(arg)
		if err != nil {
			return nil, fmt.Errorf("parameter %d of %s: %w", i, owner, err)
		}
		args = append(args, x)
	}
	return args, nil
}

// methodType returns the type of the method without its receiver. Pointer
// methods of struct values are included.
func methodType(t reflect.Type, name string) (reflect.Type, bool) {
	m, ok := t.MethodByName(name)
	if !ok && t.Kind() == reflect.Struct {
		m, ok = reflect.PtrTo(t).MethodByName(name)
	}
	if !ok {
		return nil, false
	}
	if t.Kind() == reflect.Interface {
		return m.Type, true
	}

	mt := m.Type
	in := make([]reflect.Type, mt.NumIn()-1)
	for i := range in {
		in[i] = mt.In(i + 1)
	}
	out := make([]reflect.Type, mt.NumOut())
	for i := range out {
		out[i] = mt.Out(i)
	}
	return reflect.FuncOf(in, out, mt.IsVariadic()), true
}

// static reports whether the object can be built with plain Go code: its
// constructor is an exported package-level function (or it has none) and
// every type involved can be spelled in the generated package.
func (e *emitter) static(class *definition.Class, props []string, methods []method) bool {
	if !e.renderable(class.Type) {
		return false
	}
	if ctor, ok := class.Constructor(); ok {
		if _, _, ok := direflect.StaticFunc(ctor.Interface()); !ok {
			return false
		}
		for _, t := range class.Params() {
			if !e.renderable(t) {
				return false
			}
		}
	}

	if len(props) > 0 {
		st, ok := class.Struct()
		if !ok || class.Type.Kind() == reflect.Interface {
			return false
		}
		for _, name := range props {
			f, _ := st.FieldByName(name)
			if len(f.Index) > 1 || !e.renderable(f.Type) {
				return false
			}
		}
	}
	for _, m := range methods {
		for i := 0; i < m.typ.NumIn(); i++ {
			if !e.renderable(m.typ.In(i)) {
				return false
			}
		}
	}
	return true
}

func (e *emitter) renderable(t reflect.Type) bool {
	scratch := gen.NewFile(e.c.pkgPath)
	scratch.Type(t)
	return scratch.Err() == nil
}

// convert emits the conversion of x to t and returns the typed variable.
func (e *emitter) convert(x string, t reflect.Type) string {
	p := e.tmp("p")
	e.printf("%s, err := %s.Convert[%s](%s)", p, e.di, e.f.Type(t), x)
	e.check()
	return p
}

func (e *emitter) qualify(pkgPath, name string) string {
	if pkgPath == e.c.pkgPath {
		return name
	}
	return e.f.Import(pkgPath, gen.PackageName(pkgPath)) + "." + name
}

func (e *emitter) constructStatic(class *definition.Class, args, names, props []string, methods []method) (string, error) {
	o := e.tmp("o")
	if ctor, ok := class.Constructor(); ok {
		params := class.Params()
		typed := make([]string, len(args))
		for i, x := range args {
			typed[i] = e.convert(x, params[i])
			if class.Variadic() && i == len(params)-1 {
				typed[i] += "..."
			}
		}
		pkgPath, name, _ := direflect.StaticFunc(ctor.Interface())
		call := fmt.Sprintf("%s(%s)", e.qualify(pkgPath, name), strings.Join(typed, ", "))
		if ctor.Type().NumOut() == 2 {
			e.printf("%s, err := %s", o, call)
			e.check()
		} else {
			e.printf("%s := %s", o, call)
		}
	} else if class.Type.Kind() == reflect.Ptr {
		e.printf("%s := &%s{}", o, e.f.Type(class.Type.Elem()))
	} else {
		e.printf("var %s %s", o, e.f.Type(class.Type))
	}

	st, _ := class.Struct()
	for i, name := range names {
		f, _ := st.FieldByName(name)
		p := e.convert(props[i], f.Type)
		e.printf("%s.%s = %s", o, name, p)
	}

	for _, m := range methods {
		typed := make([]string, len(m.args))
		for i, x := range m.args {
			typed[i] = e.convert(x, m.typ.In(i))
			if m.typ.IsVariadic() && i == m.typ.NumIn()-1 {
				typed[i] += "..."
			}
		}
		call := fmt.Sprintf("%s.%s(%s)", o, m.name, strings.Join(typed, ", "))
		n := m.typ.NumOut()
		if n > 0 && direflect.IsErr(m.typ.Out(n-1)) {
			e.printf("if %serr := %s; err != nil {\nreturn nil, err\n}", strings.Repeat("_, ", n-1), call)
		} else {
			e.printf("%s", call)
		}
	}
	return o, nil
}

func (e *emitter) constructDynamic(class *definition.Class, args, names, props []string, methods []method) string {
	o := e.tmp("o")
	e.printf("%s, err := c.New(%q%s)", o, class.Name, list(args))
	e.check()
	for i, name := range names {
		next := e.tmp("o")
		e.printf("%s, err := c.SetField(%s, %q, %s)", next, o, name, props[i])
		e.check()
		o = next
	}
	for _, m := range methods {
		e.printf("if err := c.CallMethod(%s, %q%s); err != nil {\nreturn nil, err\n}", o, m.name, list(m.args))
	}
	return o
}

// list renders args as trailing call arguments.
func list(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return ", " + strings.Join(args, ", ")
}

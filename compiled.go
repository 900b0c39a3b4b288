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
	"sync"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/definition/resolver"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/env"
	"github.com/dimod/di/proxy"
)

// CompiledEntry is one routine of a compiled container.
type CompiledEntry struct {
	Get func(*Compiled) (interface{}, error)

	// Unshared entries are built again on every request.
	Unshared bool
}

// CompiledEntries maps entry names to the routines building them.
type CompiledEntries map[string]CompiledEntry

var _compiled = struct {
	sync.Mutex
	byName map[string]CompiledEntries
}{byName: make(map[string]CompiledEntries)}

// RegisterCompiled registers the table of a compiled container. Generated
// code calls it from an init function; it panics when name is taken.
func RegisterCompiled(name string, entries CompiledEntries) {
	_compiled.Lock()
	defer _compiled.Unlock()

	if _, ok := _compiled.byName[name]; ok {
		panic(fmt.Sprintf("di: compiled container %q registered twice", name))
	}
	_compiled.byName[name] = entries
}

func lookupCompiled(name string) (CompiledEntries, bool) {
	_compiled.Lock()
	defer _compiled.Unlock()

	entries, ok := _compiled.byName[name]
	return entries, ok
}

// Compiled gives compiled routines access to the container running them.
// Its methods are called by generated code only.
type Compiled struct {
	c *Container
}

// Self returns the container dependencies are looked up from.
func (c *Compiled) Self() interface{} { return c.c.target }

// Get returns another entry.
func (c *Compiled) Get(name string) (interface{}, error) {
	return c.c.target.Get(name)
}

// GetOptional returns another entry, or nil when it is not defined.
func (c *Compiled) GetOptional(name string) (interface{}, error) {
	if !c.c.target.Has(name) {
		return nil, nil
	}
	return c.c.target.Get(name)
}

// Fallback resolves the definition of entry, for entries that could not be
// transcribed.
func (c *Compiled) Fallback(entry string) (interface{}, error) {
	def, err := c.c.definition(entry)
	if err != nil {
		return nil, err
	}
	return c.c.resolver.Resolve(def, nil)
}

// Env looks a variable up and casts it.
func (c *Compiled) Env(variable, cast string) (interface{}, bool, error) {
	raw, ok := c.c.env.Lookup(variable)
	if !ok {
		return nil, false, nil
	}
	v, err := env.Cast(raw, cast)
	if err != nil {
		return nil, false, &InvalidDefinitionError{
			Reason: fmt.Sprintf("environment variable %q cannot be cast to %s", variable, cast),
			Err:    err,
		}
	}
	return v, true, nil
}

// EnvNotDefined returns the error of a required variable that is not set.
func (c *Compiled) EnvNotDefined(entry, variable string) error {
	return definition.InvalidDefinitionf(entry, "the environment variable %q has not been defined", variable)
}

// Expand replaces the {entry} placeholders of expr.
func (c *Compiled) Expand(expr string) (string, error) {
	return resolver.Expand(expr, c.c.target.Get)
}

// New builds an instance of a registered class.
func (c *Compiled) New(class string, args ...interface{}) (interface{}, error) {
	overrides := make(map[int]interface{}, len(args))
	for i, arg := range args {
		overrides[i] = arg
	}
	return c.c.resolver.Resolve(&definition.Object{ClassName: class}, overrides)
}

// SetField sets a field of obj and returns obj, copied when it is a struct
// value.
func (c *Compiled) SetField(obj interface{}, field string, v interface{}) (interface{}, error) {
	return c.c.resolver.InjectOn(obj, &definition.Object{
		Properties: map[string]definition.Definition{field: &definition.Value{Value: v}},
	})
}

// CallMethod calls a method of obj.
func (c *Compiled) CallMethod(obj interface{}, method string, args ...interface{}) error {
	_, err := c.c.resolver.InjectOn(obj, &definition.Object{
		Methods: []definition.MethodCall{{Method: method, Args: values(args)}},
	})
	return err
}

// Call invokes the function registered under fn for entry. Parameters
// missing from args are injected.
func (c *Compiled) Call(fn, entry string, args Args) (interface{}, error) {
	return c.c.resolver.Resolve(&definition.Factory{EntryName: entry, CallableName: fn}, args)
}

// Decorate invokes the decorator registered under fn with the previous
// value of entry.
func (c *Compiled) Decorate(fn, entry string, prev interface{}, args Args) (interface{}, error) {
	params := make(map[int]definition.Definition, len(args))
	for i, v := range args {
		params[i] = &definition.Value{Value: v}
	}
	return c.c.resolver.Resolve(&definition.Decorator{
		EntryName:    entry,
		CallableName: fn,
		Parameters:   params,
		Decorated:    &definition.Value{Value: prev},
	}, nil)
}

// Lazy returns a proxy of class that calls build on first use.
func (c *Compiled) Lazy(entry, class string, build func() (interface{}, error)) (v interface{}, err error) {
	cls, ok := c.c.registry.Class(class)
	if !ok {
		return nil, definition.InvalidDefinitionf(entry, "the class %q is not registered", class)
	}
	defer func() {
		c.c.log.LogEvent(&dievent.ProxyCreated{
			Name:  entry,
			Class: class,
			Eager: err == nil && !proxy.Defers(c.c.proxies, cls.Type),
			Err:   err,
		})
	}()
	return c.c.proxies.CreateProxy(cls.Type, build)
}

// Convert converts v, as resolved by the container, to T.
func Convert[T any](v interface{}) (T, error) {
	var zero T
	rv, err := definition.Coerce(v, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}
	out, _ := rv.Interface().(T)
	return out, nil
}

func values(args []interface{}) map[int]definition.Definition {
	if len(args) == 0 {
		return nil
	}
	out := make(map[int]definition.Definition, len(args))
	for i, v := range args {
		out[i] = &definition.Value{Value: v}
	}
	return out
}

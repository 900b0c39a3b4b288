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
	"sort"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/definition/resolver"
	"github.com/dimod/di/definition/source"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/env"
	"github.com/dimod/di/internal/diclock"
	"github.com/dimod/di/internal/direflect"
	"github.com/dimod/di/proxy"
)

type (
	// In can be embedded in a constructor parameter struct whose fields are
	// injected one by one. See definition.In.
	In = definition.In

	// RequestedEntry is injected into factory parameters of this type.
	RequestedEntry = definition.RequestedEntry
)

// Args overrides constructor or factory parameters by position.
type Args map[int]interface{}

// ContainerInterface is implemented by containers that can serve as the
// target of dependency lookups. See Wrap.
type ContainerInterface interface {
	Get(name string) (interface{}, error)
	Has(name string) bool
}

// Container builds and caches entries.
//
// A Container is not safe for concurrent use.
type Container struct {
	source     source.Source
	chain      *source.Chain
	registry   *definition.Registry
	normalizer definition.Normalizer
	resolver   *resolver.Dispatcher
	proxies    proxy.Factory
	env        *env.Environment
	log        dievent.Logger
	clock      diclock.Clock

	// target receives the lookups of dependencies: the wrapper container,
	// or the container itself.
	target ContainerInterface

	resolved  map[string]interface{}
	resolving []string
	// checking lists the names Has is inspecting.
	checking []string

	compiledName string
	entries      CompiledEntries
}

var _ ContainerInterface = (*Container)(nil)

// Get returns the entry called name, building it on first use. Shared
// entries are cached for the lifetime of the container.
func (c *Container) Get(name string) (interface{}, error) {
	if v, ok := c.resolved[name]; ok {
		return v, nil
	}
	if e, ok := c.entries[name]; ok {
		v, err := c.runCompiled(name, e)
		if err == nil && !e.Unshared {
			c.resolved[name] = v
		}
		return v, err
	}

	def, err := c.definition(name)
	if err != nil {
		return nil, err
	}
	v, err := c.resolve(name, def, nil)
	if err == nil && definition.IsShared(def) {
		c.resolved[name] = v
	}
	return v, err
}

// Make builds a new instance of the entry called name. args override
// constructor or factory parameters for this call only. Make neither reads
// nor writes the cache of shared entries.
func (c *Container) Make(name string, args Args) (interface{}, error) {
	if e, ok := c.entries[name]; ok && len(args) == 0 {
		return c.runCompiled(name, e)
	}
	def, err := c.definition(name)
	if err != nil {
		return nil, err
	}
	return c.resolve(name, def, args)
}

// Has reports whether the container can build the entry called name. It
// does not report whether building it would succeed. Entries whose aliases
// lead back to themselves cannot be built.
func (c *Container) Has(name string) bool {
	if _, ok := c.resolved[name]; ok {
		return true
	}
	if _, ok := c.entries[name]; ok {
		return true
	}
	for _, n := range c.checking {
		if n == name {
			return false
		}
	}
	c.checking = append(c.checking, name)
	defer func() { c.checking = c.checking[:len(c.checking)-1] }()

	def, err := c.source.GetDefinition(name)
	if err != nil || def == nil {
		return false
	}
	return c.resolver.IsResolvable(def)
}

// Set defines the entry called name. Definitions, helpers and functions
// (factories) are added to the definitions of the container; any other value
// is stored as the resolved entry.
//
// Definitions cannot be added to containers using a definition cache or a
// compiled container.
func (c *Container) Set(name string, value interface{}) error {
	switch value.(type) {
	case definition.Definition, definition.Helper:
	default:
		if t := reflect.TypeOf(value); t == nil || t.Kind() != reflect.Func {
			c.resolved[name] = value
			return nil
		}
	}

	mutable := c.chain.Mutable()
	if mutable == nil {
		return &ConfigurationError{
			Option: fmt.Sprintf("Set(%q)", name),
			Err:    fmt.Errorf("definitions cannot be added to a container using a definition cache or compilation"),
		}
	}
	def, err := c.normalizer.Normalize(name, value)
	if err != nil {
		return err
	}
	mutable.AddDefinition(def)
	delete(c.resolved, name)
	return nil
}

// Call invokes fn, injecting its parameters. args provide parameters by
// position; the others are inferred from their types. fn may return a value
// and an error.
func (c *Container) Call(fn interface{}, args Args) (interface{}, error) {
	return c.resolver.Resolve(&definition.Factory{Callable: fn}, args)
}

// InjectOn injects the properties and calls the methods that the definition
// of the type of obj declares. It returns obj, or a modified copy when obj
// is a struct value.
func (c *Container) InjectOn(obj interface{}) (interface{}, error) {
	t := reflect.TypeOf(obj)
	if t == nil {
		return nil, fmt.Errorf("cannot inject into untyped nil")
	}
	name := direflect.TypeName(t)
	if _, ok := c.registry.Class(name); !ok {
		c.registry.RegisterImplicit(t)
	}

	def, err := c.source.GetDefinition(name)
	if err != nil {
		return nil, err
	}
	obj2, ok := def.(*definition.Object)
	if !ok {
		return obj, nil
	}
	return c.resolver.InjectOn(obj, obj2)
}

// KnownEntryNames returns the names of the entries defined explicitly or
// already resolved, sorted.
func (c *Container) KnownEntryNames() ([]string, error) {
	defs, err := c.source.Definitions()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(defs)+len(c.resolved)+len(c.entries))
	for name := range defs {
		seen[name] = struct{}{}
	}
	for name := range c.resolved {
		seen[name] = struct{}{}
	}
	for name := range c.entries {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DebugEntry describes how the entry called name is built.
func (c *Container) DebugEntry(name string) (string, error) {
	def, err := c.source.GetDefinition(name)
	if err != nil {
		return "", err
	}
	if def != nil {
		return def.String(), nil
	}
	if v, ok := c.resolved[name]; ok {
		if v == nil {
			return "Value (nil)", nil
		}
		return fmt.Sprintf("Value (%v)", reflect.TypeOf(v)), nil
	}
	if _, ok := c.entries[name]; ok {
		return fmt.Sprintf("Compiled (%s)", c.compiledName), nil
	}
	return "", &NotFoundError{Name: name}
}

// Compiled reports whether the container runs the compiled container
// registered under the configured name.
func (c *Container) Compiled() bool { return c.entries != nil }

func (c *Container) definition(name string) (definition.Definition, error) {
	def, err := c.source.GetDefinition(name)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, &NotFoundError{Name: name}
	}
	return def, nil
}

// enter pushes name on the resolution stack.
func (c *Container) enter(name string) error {
	for _, n := range c.resolving {
		if n == name {
			chain := append(append([]string(nil), c.resolving...), name)
			return &CircularDependencyError{Chain: chain}
		}
	}
	c.resolving = append(c.resolving, name)
	return nil
}

func (c *Container) leave() {
	c.resolving = c.resolving[:len(c.resolving)-1]
}

func (c *Container) resolve(name string, def definition.Definition, args Args) (v interface{}, err error) {
	if err := c.enter(name); err != nil {
		return nil, err
	}
	defer c.leave()

	start := c.clock.Now()
	defer func() {
		c.log.LogEvent(&dievent.Resolved{
			Name:       name,
			Definition: describe(def),
			Shared:     definition.IsShared(def) && args == nil,
			Runtime:    c.clock.Since(start),
			Err:        err,
		})
	}()
	return c.resolver.Resolve(def, args)
}

func (c *Container) runCompiled(name string, e CompiledEntry) (v interface{}, err error) {
	if err := c.enter(name); err != nil {
		return nil, err
	}
	defer c.leave()

	start := c.clock.Now()
	defer func() {
		c.log.LogEvent(&dievent.Resolved{
			Name:       name,
			Definition: "compiled " + c.compiledName,
			Shared:     !e.Unshared,
			Runtime:    c.clock.Since(start),
			Err:        err,
		})
	}()
	return e.Get(&Compiled{c: c})
}

func describe(def definition.Definition) string {
	switch d := def.(type) {
	case *definition.Value:
		return "value"
	case *definition.Reference:
		return "reference to " + d.Target
	case *definition.EnvironmentVariable:
		return "environment variable " + d.Variable
	case *definition.Factory:
		return "factory " + d.Func()
	case *definition.Decorator:
		return "decorator " + d.Func()
	case *definition.Object:
		return "object " + d.Class()
	case *definition.String:
		return "string"
	case *definition.Array:
		return "array"
	}
	return fmt.Sprintf("%T", def)
}

// NameOf returns the entry name of type T: its full import path, such as
// *github.com/acme/app.Mailer.
func NameOf[T any]() string {
	return direflect.TypeName(reflect.TypeOf((*T)(nil)).Elem())
}

// Get returns the entry named after T, converted to T. Structs and pointers
// to structs are registered as classes, so that they can be autowired.
func Get[T any](c *Container) (T, error) {
	return getAs[T](c, c.Get)
}

// MakeOf builds a new instance of the entry named after T.
func MakeOf[T any](c *Container, args Args) (T, error) {
	return getAs[T](c, func(name string) (interface{}, error) {
		return c.Make(name, args)
	})
}

func getAs[T any](c *Container, get func(string) (interface{}, error)) (T, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	name := direflect.TypeName(t)
	if _, ok := c.registry.Class(name); !ok {
		st := t
		if st.Kind() == reflect.Ptr {
			st = st.Elem()
		}
		if st.Kind() == reflect.Struct {
			_, _ = c.registry.Register(t)
		}
	}

	var zero T
	v, err := get(name)
	if err != nil {
		return zero, err
	}
	return Convert[T](v)
}

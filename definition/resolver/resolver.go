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

// Package resolver turns definitions into values.
//
// The [Dispatcher] selects a resolver by definition variant. Nested entries
// are requested from a [Container], so that lookups of other entries go
// through the container cache and its cycle detection.
package resolver

import (
	"fmt"
	"reflect"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/env"
	"github.com/dimod/di/internal/direflect"
	"github.com/dimod/di/proxy"
)

// Container is the target of nested lookups.
type Container interface {
	Get(name string) (interface{}, error)
	Has(name string) bool
}

// Resolver resolves the definitions of one variant.
type Resolver interface {
	// Resolve builds the value of def. args override constructor or factory
	// parameters by position.
	Resolve(def definition.Definition, args map[int]interface{}) (interface{}, error)

	// IsResolvable reports whether Resolve can be expected to succeed.
	IsResolvable(def definition.Definition) bool
}

// Config holds the collaborators of a Dispatcher.
type Config struct {
	// Container receives nested lookups and is injected into parameters of
	// interface types it implements.
	Container Container

	Registry *definition.Registry

	// Hints infers the dependencies nobody configured.
	Hints definition.HintResolver

	// Env defaults to env.Process.
	Env *env.Environment

	// Proxies defaults to a proxy.LazyFactory keeping proxies in memory.
	Proxies proxy.Factory

	// Logger defaults to dievent.NopLogger.
	Logger dievent.Logger
}

// Dispatcher resolves any definition by delegating to the resolver of its
// variant.
type Dispatcher struct {
	value     *valueResolver
	reference *referenceResolver
	env       *envResolver
	factory   *factoryResolver
	decorator *decoratorResolver
	object    *objectResolver
	str       *stringResolver
	array     *arrayResolver
}

var _ Resolver = (*Dispatcher)(nil)

// New returns a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Env == nil {
		cfg.Env = env.Process
	}
	if cfg.Logger == nil {
		cfg.Logger = dievent.NopLogger
	}
	if cfg.Proxies == nil {
		cfg.Proxies = proxy.NewFactory(proxy.WithLogger(cfg.Logger))
	}
	if cfg.Registry == nil {
		cfg.Registry = definition.NewRegistry()
	}

	d := &Dispatcher{}
	p := &params{d: d, container: cfg.Container, hints: cfg.Hints}
	d.value = &valueResolver{}
	d.reference = &referenceResolver{container: cfg.Container}
	d.env = &envResolver{d: d, env: cfg.Env}
	d.factory = &factoryResolver{params: p, registry: cfg.Registry}
	d.decorator = &decoratorResolver{d: d, factory: d.factory, log: cfg.Logger}
	d.object = &objectResolver{
		d:        d,
		params:   p,
		registry: cfg.Registry,
		proxies:  cfg.Proxies,
		log:      cfg.Logger,
	}
	d.str = &stringResolver{container: cfg.Container}
	d.array = &arrayResolver{d: d}
	return d
}

func (d *Dispatcher) resolver(def definition.Definition) (Resolver, error) {
	switch def.(type) {
	case *definition.Value:
		return d.value, nil
	case *definition.Reference:
		return d.reference, nil
	case *definition.EnvironmentVariable:
		return d.env, nil
	case *definition.Factory:
		return d.factory, nil
	case *definition.Decorator:
		return d.decorator, nil
	case *definition.Object:
		return d.object, nil
	case *definition.String:
		return d.str, nil
	case *definition.Array:
		return d.array, nil
	case *definition.ArrayExtension:
		return nil, definition.InvalidDefinitionf(def.Name(), "values can only be added to an array defined in another source")
	}
	return nil, fmt.Errorf("no resolver for definitions of type %T", def)
}

// Resolve implements Resolver.
func (d *Dispatcher) Resolve(def definition.Definition, args map[int]interface{}) (interface{}, error) {
	r, err := d.resolver(def)
	if err != nil {
		return nil, err
	}
	return r.Resolve(def, args)
}

// IsResolvable implements Resolver.
func (d *Dispatcher) IsResolvable(def definition.Definition) bool {
	r, err := d.resolver(def)
	return err == nil && r.IsResolvable(def)
}

// InjectOn injects the properties of def into target and calls the methods
// of def on it. It returns target, or a modified copy when target is a
// struct value.
func (d *Dispatcher) InjectOn(target interface{}, def *definition.Object) (interface{}, error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return nil, definition.InvalidDefinitionf(def.Name(), "cannot inject into nil")
	}
	owner := def.Name()
	if owner == "" {
		owner = direflect.TypeName(v.Type())
	}
	return d.object.complete(owner, v, def)
}

// ResolveAs resolves def and converts the result to t.
func (d *Dispatcher) ResolveAs(def definition.Definition, t reflect.Type) (reflect.Value, error) {
	v, err := d.Resolve(def, nil)
	if err != nil {
		return reflect.Value{}, err
	}
	return definition.Coerce(v, t)
}

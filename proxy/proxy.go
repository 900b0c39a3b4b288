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

// Package proxy creates lazy stand-ins for container entries.
//
// A proxy has the type of the entry and builds the real value the first time
// it is used. Function entries are proxied in memory. Interface entries use
// the proxy registered for the interface with [Register], usually by code
// that a [Generator] wrote on a previous run (see [WriteToFile]).
//
// Interfaces without a registered proxy are built eagerly by [LazyFactory],
// or rejected with [ErrNoProxy] when it is [Strict].
package proxy

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dimod/di/dievent"
)

// Initializer builds the value a proxy stands in for.
type Initializer func() (interface{}, error)

// Factory creates proxies.
type Factory interface {
	// CreateProxy returns a value of type target that calls init on first
	// use.
	CreateProxy(target reflect.Type, init Initializer) (interface{}, error)
}

// ErrNoProxy is returned by strict factories for interfaces without a
// registered proxy.
var ErrNoProxy = errors.New("no proxy is registered")

// Deferrer is implemented by factories that can tell in advance whether the
// values they return for target defer their initialization.
type Deferrer interface {
	Defers(target reflect.Type) bool
}

// Defers reports whether the proxies f creates for target are lazy.
// Factories that do not implement Deferrer are assumed to be.
func Defers(f Factory, target reflect.Type) bool {
	if d, ok := f.(Deferrer); ok {
		return d.Defers(target)
	}
	return true
}

// InitError is the panic value of a proxy whose initializer failed.
type InitError struct {
	Target reflect.Type
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("lazy %v could not be initialized: %v", e.Target, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Lazy holds a value built on first use. It is not safe for concurrent use.
type Lazy[T any] struct {
	init Initializer
	done bool
	v    T
}

// NewLazy returns a Lazy calling init.
func NewLazy[T any](init Initializer) *Lazy[T] {
	return &Lazy[T]{init: init}
}

// Get returns the value, building it on the first call. It panics with an
// *InitError if the initializer fails.
func (l *Lazy[T]) Get() T {
	if !l.done {
		v, err := l.init()
		if err != nil {
			panic(&InitError{Target: reflect.TypeOf((*T)(nil)).Elem(), Err: err})
		}
		if v != nil {
			l.v = v.(T)
		}
		l.done = true
		l.init = nil
	}
	return l.v
}

// Initialized reports whether the value was built.
func (l *Lazy[T]) Initialized() bool { return l.done }

var _proxies = make(map[reflect.Type]func(Initializer) interface{})

// Register installs the proxy constructor of interface I. It is meant to be
// called from init functions.
func Register[I any](newProxy func(*Lazy[I]) I) {
	t := reflect.TypeOf((*I)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		panic(fmt.Sprintf("proxies can only be registered for interfaces, got %v", t))
	}
	_proxies[t] = func(init Initializer) interface{} {
		return newProxy(NewLazy[I](init))
	}
}

// Registered reports whether a proxy is registered for t.
func Registered(t reflect.Type) bool {
	_, ok := _proxies[t]
	return ok
}

// LazyFactory is the default Factory.
type LazyFactory struct {
	generator *Generator
	log       dievent.Logger
	strict    bool
}

var (
	_ Factory  = (*LazyFactory)(nil)
	_ Deferrer = (*LazyFactory)(nil)
)

// Option customizes a LazyFactory.
type Option interface {
	apply(*LazyFactory)
}

type writeToFileOption struct{ g *Generator }

func (o writeToFileOption) apply(f *LazyFactory) { f.generator = o.g }

// WriteToFile writes the source of missing interface proxies into the
// package directory dir, to be compiled into the next build.
func WriteToFile(dir, pkg string) Option {
	return writeToFileOption{g: &Generator{Dir: dir, Package: pkg}}
}

type loggerOption struct{ l dievent.Logger }

func (o loggerOption) apply(f *LazyFactory) { f.log = o.l }

// WithLogger reports generated proxies to l.
func WithLogger(l dievent.Logger) Option {
	return loggerOption{l: l}
}

type strictOption struct{}

func (strictOption) apply(f *LazyFactory) { f.strict = true }

// Strict makes CreateProxy fail with ErrNoProxy for interfaces without a
// registered proxy instead of building them eagerly. Proxy sources are still
// written when WriteToFile is set.
func Strict() Option {
	return strictOption{}
}

// NewFactory returns a LazyFactory.
func NewFactory(opts ...Option) *LazyFactory {
	f := &LazyFactory{log: dievent.NopLogger}
	for _, opt := range opts {
		opt.apply(f)
	}
	return f
}

// CreateProxy implements Factory.
func (f *LazyFactory) CreateProxy(target reflect.Type, init Initializer) (interface{}, error) {
	switch target.Kind() {
	case reflect.Func:
		return funcProxy(target, init), nil
	case reflect.Interface:
		if newProxy, ok := _proxies[target]; ok {
			return newProxy(init), nil
		}
		if f.generator != nil {
			file, err := f.generator.Generate(target)
			f.log.LogEvent(&dievent.ProxyGenerated{Class: target.String(), File: file, Err: err})
			if err != nil {
				return nil, err
			}
		}
		if f.strict {
			return nil, fmt.Errorf("%w for %v", ErrNoProxy, target)
		}
		return init()
	}
	return nil, fmt.Errorf("lazy entries must be interfaces or functions, got %v", target)
}

// Defers implements Deferrer. Functions and interfaces with a registered
// proxy are deferred.
func (f *LazyFactory) Defers(target reflect.Type) bool {
	switch target.Kind() {
	case reflect.Func:
		return true
	case reflect.Interface:
		return Registered(target)
	}
	return false
}

func funcProxy(t reflect.Type, init Initializer) interface{} {
	lazy := NewLazy[interface{}](init)
	return reflect.MakeFunc(t, func(args []reflect.Value) []reflect.Value {
		fn := reflect.ValueOf(lazy.Get())
		if t.IsVariadic() {
			return fn.CallSlice(args)
		}
		return fn.Call(args)
	}).Interface()
}

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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dimod/di/cache"
	"github.com/dimod/di/definition/source"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/internal/direflect"
	"github.com/dimod/di/proxy"
	"go.uber.org/multierr"
)

// An Option configures a Builder.
type Option interface {
	fmt.Stringer

	apply(*Builder) error
}

// Options bundles a group of options together into a single option.
func Options(opts ...Option) Option {
	return optionGroup(opts)
}

type optionGroup []Option

func (og optionGroup) apply(b *Builder) error {
	var errs []error
	for _, opt := range og {
		if err := opt.apply(b); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

func (og optionGroup) String() string {
	items := make([]string, len(og))
	for i, opt := range og {
		items[i] = fmt.Sprint(opt)
	}
	return fmt.Sprintf("di.Options(%s)", strings.Join(items, ", "))
}

// Definitions adds definition sources. Each argument is one of:
//
//   - a map[string]interface{} of entry names to definitions, helpers,
//     functions (factories) or values;
//   - the path of a .yaml, .yml, .toml or .json definition file;
//   - a source.Source.
//
// Sources added later take precedence over earlier ones.
func Definitions(defs ...interface{}) Option {
	return definitionsOption{defs: defs, stack: direflect.Caller()}
}

type definitionsOption struct {
	defs  []interface{}
	stack string
}

func (o definitionsOption) apply(b *Builder) error {
	for i, d := range o.defs {
		var (
			src source.Source
			err error
		)
		switch d := d.(type) {
		case map[string]interface{}:
			src, err = source.NewArray(b.normalizer, d)
		case string:
			src, err = source.NewFile(d)
		case source.Source:
			src = d
		default:
			err = fmt.Errorf("unsupported definitions of type %T", d)
		}
		if err != nil {
			return &ConfigurationError{
				Option: fmt.Sprintf("di.Definitions (argument %d, from %s)", i, o.stack),
				Err:    err,
			}
		}
		b.sources = append(b.sources, src)
	}
	return nil
}

func (o definitionsOption) String() string {
	items := make([]string, len(o.defs))
	for i, d := range o.defs {
		switch d := d.(type) {
		case string:
			items[i] = fmt.Sprintf("%q", d)
		default:
			items[i] = fmt.Sprintf("%T", d)
		}
	}
	return fmt.Sprintf("di.Definitions(%s)", strings.Join(items, ", "))
}

// Autowiring enables or disables autowiring, on by default. Without
// autowiring every entry needs a definition.
func Autowiring(enabled bool) Option {
	return boolOption{name: "Autowiring", v: enabled, set: func(b *Builder, v bool) { b.autowiring = v }}
}

// Annotations enables autowiring from `inject` struct tags and parameter
// structs embedding In, in addition to declared types.
func Annotations(enabled bool) Option {
	return boolOption{name: "Annotations", v: enabled, set: func(b *Builder, v bool) { b.annotations = v }}
}

// IgnoreAnnotationErrors skips malformed `inject` tags instead of failing.
func IgnoreAnnotationErrors(ignore bool) Option {
	return boolOption{name: "IgnoreAnnotationErrors", v: ignore, set: func(b *Builder, v bool) { b.ignoreAnnotationErrors = v }}
}

// StrictProxies makes lazy interface entries without a registered proxy
// fail with proxy.ErrNoProxy instead of being built eagerly. It has no
// effect with WithProxyFactory.
func StrictProxies(strict bool) Option {
	return boolOption{name: "StrictProxies", v: strict, set: func(b *Builder, v bool) { b.strictProxies = v }}
}

type boolOption struct {
	name string
	v    bool
	set  func(*Builder, bool)
}

func (o boolOption) apply(b *Builder) error {
	o.set(b, o.v)
	return nil
}

func (o boolOption) String() string {
	return fmt.Sprintf("di.%s(%v)", o.name, o.v)
}

// Cache stores the definitions found by the container in backend, so that
// later containers skip their lookup.
func Cache(backend cache.Cache) Option {
	return cacheOption{backend: backend}
}

type cacheOption struct{ backend cache.Cache }

func (o cacheOption) apply(b *Builder) error {
	if o.backend == nil {
		return &ConfigurationError{Option: o.String(), Err: errors.New("nil cache backend")}
	}
	b.cache = o.backend
	return nil
}

func (o cacheOption) String() string {
	return fmt.Sprintf("di.Cache(%T)", o.backend)
}

// WriteProxiesToFile writes the source of the proxies missing for lazy
// interface entries into dir, as package pkg.
func WriteProxiesToFile(dir, pkg string) Option {
	return proxyFileOption{dir: dir, pkg: pkg}
}

type proxyFileOption struct{ dir, pkg string }

func (o proxyFileOption) apply(b *Builder) error {
	if o.dir == "" {
		return &ConfigurationError{Option: o.String(), Err: errors.New("proxies cannot be written to file without a directory")}
	}
	b.proxyDir, b.proxyPackage = o.dir, o.pkg
	return nil
}

func (o proxyFileOption) String() string {
	return fmt.Sprintf("di.WriteProxiesToFile(%q, %q)", o.dir, o.pkg)
}

// WithProxyFactory replaces the factory of lazy proxies.
func WithProxyFactory(f proxy.Factory) Option {
	return proxyFactoryOption{f: f}
}

type proxyFactoryOption struct{ f proxy.Factory }

func (o proxyFactoryOption) apply(b *Builder) error {
	if o.f == nil {
		return &ConfigurationError{Option: o.String(), Err: errors.New("nil proxy factory")}
	}
	b.proxyFactory = o.f
	return nil
}

func (o proxyFactoryOption) String() string {
	return fmt.Sprintf("di.WithProxyFactory(%T)", o.f)
}

// Wrap makes c the target of dependency lookups, so that the dependencies
// of the entries of the built container are resolved by c.
func Wrap(c ContainerInterface) Option {
	return wrapOption{c: c}
}

type wrapOption struct{ c ContainerInterface }

func (o wrapOption) apply(b *Builder) error {
	if o.c == nil {
		return &ConfigurationError{Option: o.String(), Err: errors.New("nil wrapper container")}
	}
	b.wrapper = o.c
	return nil
}

func (o wrapOption) String() string {
	return fmt.Sprintf("di.Wrap(%T)", o.c)
}

// A CompileOption customizes Compile.
type CompileOption interface {
	applyCompile(*compileConfig)
}

type compileConfig struct {
	dir, name, pkg, pkgPath string
}

type containerNameOption string

func (o containerNameOption) applyCompile(c *compileConfig) { c.name = string(o) }

// ContainerName sets the name the compiled container is registered under.
func ContainerName(name string) CompileOption { return containerNameOption(name) }

type packageOption struct{ name, path string }

func (o packageOption) applyCompile(c *compileConfig) { c.pkg, c.pkgPath = o.name, o.path }

// Package sets the package name and import path of the generated file.
func Package(name, importPath string) CompileOption { return packageOption{name: name, path: importPath} }

// Compile uses the compiled container registered under the container name
// when its package is linked into the binary. Otherwise the container is
// compiled into dir, unless a compiled file is already there, and the
// container built this time resolves definitions at run time.
func Compile(dir string, opts ...CompileOption) Option {
	cfg := compileConfig{dir: dir}
	for _, opt := range opts {
		opt.applyCompile(&cfg)
	}
	return compileOption{cfg: cfg}
}

type compileOption struct{ cfg compileConfig }

func (o compileOption) apply(b *Builder) error {
	if o.cfg.dir == "" {
		return &ConfigurationError{Option: o.String(), Err: errors.New("no compilation directory")}
	}
	cfg := o.cfg
	b.compile = &cfg
	return nil
}

func (o compileOption) String() string {
	return fmt.Sprintf("di.Compile(%q)", o.cfg.dir)
}

// Types registers classes. Each argument is a constructor function
// returning the instance (and optionally an error), a reflect.Type, or a
// typed nil pointer such as (*Mailer)(nil) for types built from their zero
// value.
func Types(types ...interface{}) Option {
	return typesOption(types)
}

type typesOption []interface{}

func (o typesOption) apply(b *Builder) error {
	var errs []error
	for _, t := range o {
		if _, err := b.registry.Register(t); err != nil {
			errs = append(errs, err)
		}
	}
	if err := multierr.Combine(errs...); err != nil {
		return &ConfigurationError{Option: "di.Types", Err: err}
	}
	return nil
}

func (o typesOption) String() string {
	items := make([]string, len(o))
	for i, t := range o {
		items[i] = fmt.Sprintf("%T", t)
	}
	return fmt.Sprintf("di.Types(%s)", strings.Join(items, ", "))
}

// Funcs registers named functions, usable as factories and decorators by
// name from definition files and compiled containers.
func Funcs(funcs map[string]interface{}) Option {
	return funcsOption(funcs)
}

type funcsOption map[string]interface{}

func (o funcsOption) apply(b *Builder) error {
	var errs []error
	for _, name := range o.names() {
		if err := b.registry.RegisterFunc(name, o[name]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := multierr.Combine(errs...); err != nil {
		return &ConfigurationError{Option: "di.Funcs", Err: err}
	}
	return nil
}

func (o funcsOption) names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o funcsOption) String() string {
	return fmt.Sprintf("di.Funcs(%s)", strings.Join(o.names(), ", "))
}

// WithLogger sets the logger the container reports its events to.
func WithLogger(l dievent.Logger) Option {
	return loggerOption{l: l}
}

type loggerOption struct{ l dievent.Logger }

func (o loggerOption) apply(b *Builder) error {
	if o.l == nil {
		return &ConfigurationError{Option: o.String(), Err: errors.New("nil logger")}
	}
	b.logger = o.l
	return nil
}

func (o loggerOption) String() string {
	return fmt.Sprintf("di.WithLogger(%v)", o.l)
}

// EnvFiles loads dotenv files when the container is built. Environment
// variables of the process take precedence over the files, and earlier
// files over later ones.
func EnvFiles(files ...string) Option {
	return envFilesOption(files)
}

type envFilesOption []string

func (o envFilesOption) apply(b *Builder) error {
	b.envFiles = append(b.envFiles, o...)
	return nil
}

func (o envFilesOption) String() string {
	return fmt.Sprintf("di.EnvFiles(%s)", strings.Join(o, ", "))
}

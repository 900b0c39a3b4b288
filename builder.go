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

	"github.com/dimod/di/cache"
	"github.com/dimod/di/compiler"
	"github.com/dimod/di/definition"
	"github.com/dimod/di/definition/resolver"
	"github.com/dimod/di/definition/source"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/env"
	"github.com/dimod/di/internal/diclock"
	"github.com/dimod/di/proxy"
	"go.uber.org/multierr"
)

// Builder assembles a Container from options. Configuration is order
// independent and locked once Build was called.
//
//	b := di.NewBuilder()
//	if err := b.Apply(di.Definitions("config/di.yaml"), di.Annotations(true)); err != nil {
//		return err
//	}
//	c, err := b.Build()
type Builder struct {
	locked bool

	sources []source.Source

	autowiring             bool
	annotations            bool
	ignoreAnnotationErrors bool

	cache        cache.Cache
	proxyDir     string
	proxyPackage string
	proxyFactory proxy.Factory
	// strictProxies rejects lazy interfaces without a registered proxy.
	strictProxies bool
	wrapper       ContainerInterface
	compile      *compileConfig
	envFiles     []string

	registry   *definition.Registry
	normalizer definition.Normalizer
	logger     dievent.Logger
	clock      diclock.Clock
}

// NewBuilder returns a Builder with autowiring enabled.
func NewBuilder() *Builder {
	registry := definition.NewRegistry()
	return &Builder{
		autowiring: true,
		registry:   registry,
		normalizer: definition.Normalizer{Registry: registry},
		logger:     dievent.NopLogger,
		clock:      diclock.System,
	}
}

// New builds a container from opts.
func New(opts ...Option) (*Container, error) {
	b := NewBuilder()
	if err := b.Apply(opts...); err != nil {
		return nil, err
	}
	return b.Build()
}

// Apply applies opts. Every option is applied; the errors are combined.
// Options applied after Build fail with an error matching ErrLocked.
func (b *Builder) Apply(opts ...Option) error {
	var errs error
	for _, opt := range opts {
		if b.locked {
			errs = multierr.Append(errs, &ConfigurationError{Option: opt.String(), Err: ErrLocked})
			continue
		}
		errs = multierr.Append(errs, opt.apply(b))
	}
	return errs
}

// AddDefinitions adds definition sources. See Definitions.
func (b *Builder) AddDefinitions(defs ...interface{}) error {
	return b.Apply(Definitions(defs...))
}

// UseAutowiring enables or disables autowiring. See Autowiring.
func (b *Builder) UseAutowiring(enabled bool) error {
	return b.Apply(Autowiring(enabled))
}

// UseAnnotations enables or disables tag-based autowiring. See Annotations.
func (b *Builder) UseAnnotations(enabled bool) error {
	return b.Apply(Annotations(enabled))
}

// IgnoreAnnotationErrors skips malformed struct tags.
func (b *Builder) IgnoreAnnotationErrors(ignore bool) error {
	return b.Apply(IgnoreAnnotationErrors(ignore))
}

// SetCache sets the definition cache backend.
func (b *Builder) SetCache(backend cache.Cache) error {
	return b.Apply(Cache(backend))
}

// WriteProxiesToFile writes generated proxies into dir.
func (b *Builder) WriteProxiesToFile(dir, pkg string) error {
	return b.Apply(WriteProxiesToFile(dir, pkg))
}

// Wrap sets the container receiving dependency lookups.
func (b *Builder) Wrap(c ContainerInterface) error {
	return b.Apply(Wrap(c))
}

// EnableCompilation compiles the container into dir. See Compile.
func (b *Builder) EnableCompilation(dir string, opts ...CompileOption) error {
	return b.Apply(Compile(dir, opts...))
}

// Build builds the container and locks the builder. Build can be called
// again; every call returns a new container over the same sources.
func (b *Builder) Build() (c *Container, err error) {
	b.locked = true

	var compiledName string
	defer func() {
		b.logger.LogEvent(&dievent.Built{
			Compiled:      c != nil && c.Compiled(),
			ContainerName: compiledName,
			Sources:       len(b.sources),
			Err:           err,
		})
	}()
	b.logger.LogEvent(&dievent.LoggerInitialized{LoggerName: fmt.Sprintf("%T", b.logger)})

	environment := env.Process
	if len(b.envFiles) > 0 {
		environment, err = env.Load(b.envFiles...)
		b.logger.LogEvent(&dievent.EnvLoaded{Files: b.envFiles, Err: err})
		if err != nil {
			return nil, err
		}
	}

	// Later sources take precedence.
	sources := make([]source.Source, len(b.sources))
	for i, src := range b.sources {
		sources[len(sources)-1-i] = src
	}

	autowiring := b.autowiringSource()
	chain := source.NewChain(sources...)
	chain.SetAutowiring(autowiring)

	var src source.Source = chain
	if b.cache != nil {
		cached := source.NewCache(chain, b.cache, b.registry, source.CacheLogger(b.logger))
		chain.SetRoot(cached)
		src = cached
	}
	if b.cache == nil && b.compile == nil {
		chain.SetMutable(source.NewMutable())
	}

	c = &Container{
		source:     src,
		chain:      chain,
		registry:   b.registry,
		normalizer: b.normalizer,
		proxies:    b.proxies(),
		env:        environment,
		log:        b.logger,
		clock:      b.clock,
		resolved:   make(map[string]interface{}),
	}
	c.target = c
	if b.wrapper != nil {
		c.target = b.wrapper
	}
	c.resolver = resolver.New(resolver.Config{
		Container: c.target,
		Registry:  b.registry,
		Hints:     autowiring,
		Env:       environment,
		Proxies:   c.proxies,
		Logger:    b.logger,
	})

	if b.compile == nil {
		return c, nil
	}

	comp := compiler.New(compiler.Config{
		ContainerName: b.compile.name,
		Package:       b.compile.pkg,
		PkgPath:       b.compile.pkgPath,
		Registry:      b.registry,
		Hints:         autowiring,
		ContainerType: reflect.TypeOf(c.target),
		Logger:        b.logger,
		Clock:         b.clock,
	})
	compiledName = comp.ContainerName()
	if entries, ok := lookupCompiled(compiledName); ok {
		c.compiledName = compiledName
		c.entries = entries
		return c, nil
	}
	if _, err := comp.Compile(src, b.compile.dir); err != nil {
		return nil, err
	}
	return c, nil
}

func (b *Builder) autowiringSource() source.Autowiring {
	switch {
	case !b.autowiring:
		return source.NewNoAutowiring(b.registry)
	case b.annotations:
		return source.NewTagAutowiring(b.registry, b.ignoreAnnotationErrors)
	default:
		return source.NewReflectionAutowiring(b.registry)
	}
}

func (b *Builder) proxies() proxy.Factory {
	if b.proxyFactory != nil {
		return b.proxyFactory
	}
	opts := []proxy.Option{proxy.WithLogger(b.logger)}
	if b.proxyDir != "" {
		opts = append(opts, proxy.WriteToFile(b.proxyDir, b.proxyPackage))
	}
	if b.strictProxies {
		opts = append(opts, proxy.Strict())
	}
	return proxy.NewFactory(opts...)
}

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

// Package compiler transcribes definitions into Go source.
//
// The generated file declares one routine per entry and registers them
// under the container name from an init function:
//
//	func init() {
//		di.RegisterCompiled("AppContainer", di.CompiledEntries{
//			"mailer": {Get: get9c2b8e5a41f0d7c3},
//		})
//	}
//
// Linking the generated package into a binary makes the container available
// to di.Compile. Routines construct objects with direct calls to their
// constructors when these are exported package-level functions, and through
// the class registry otherwise. Factories and decorators defined by closures
// are resolved from their definition at run time.
package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/definition/source"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/internal/diclock"
	"github.com/dimod/di/internal/gen"
)

const (
	// DefaultContainerName names compiled containers when none is configured.
	DefaultContainerName = "CompiledContainer"

	// DefaultPackage is the package of the generated file.
	DefaultPackage = "compiled"

	_diPath = "github.com/dimod/di"
)

// _namespace is the UUID namespace of routine names.
var _namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/dimod/di/compiler"))

// Config configures a Compiler.
type Config struct {
	// ContainerName is the name the generated table is registered under.
	ContainerName string

	// Package is the package clause of the generated file.
	Package string

	// PkgPath is the import path of the generated package. Identifiers of
	// that package are not qualified.
	PkgPath string

	// Registry knows the classes of object definitions.
	Registry *definition.Registry

	// Hints fills the parameters nobody configured, as at run time.
	Hints definition.HintResolver

	// ContainerType is the type of the container the routines run in.
	// Parameters of an interface type it implements receive the container.
	ContainerType reflect.Type

	Logger dievent.Logger
	Clock  diclock.Clock
}

// Compiler turns the definitions of a source into a generated container.
type Compiler struct {
	name          string
	pkg           string
	pkgPath       string
	registry      *definition.Registry
	hints         definition.HintResolver
	containerType reflect.Type
	log           dievent.Logger
	clock         diclock.Clock
}

// New builds a Compiler.
func New(cfg Config) *Compiler {
	c := &Compiler{
		name:          cfg.ContainerName,
		pkg:           cfg.Package,
		pkgPath:       cfg.PkgPath,
		registry:      cfg.Registry,
		hints:         cfg.Hints,
		containerType: cfg.ContainerType,
		log:           cfg.Logger,
		clock:         cfg.Clock,
	}
	if c.name == "" {
		c.name = DefaultContainerName
	}
	if c.pkg == "" {
		c.pkg = DefaultPackage
	}
	if c.registry == nil {
		c.registry = definition.NewRegistry()
	}
	if c.log == nil {
		c.log = dievent.NopLogger
	}
	if c.clock == nil {
		c.clock = diclock.System
	}
	return c
}

// ContainerName returns the name the generated table is registered under.
func (c *Compiler) ContainerName() string { return c.name }

// FileName returns the base name of the generated file, derived from the
// container name: CompiledContainer is written to compiled_container.go.
func (c *Compiler) FileName() string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range c.name {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String() + ".go"
}

// RoutineName returns the deterministic name of the routine building entry.
func RoutineName(entry string) string {
	id := uuid.NewSHA1(_namespace, []byte(entry))
	return "get" + strings.ReplaceAll(id.String(), "-", "")[:16]
}

// Compile writes the container compiled from src into dir and returns the
// path of the file.
//
// A file left by a previous run is never overwritten: Compile returns its
// path without compiling anything. Remove the file to recompile. When a
// definition cannot be compiled, Compile returns a *CompilationError and
// writes nothing.
func (c *Compiler) Compile(src source.Source, dir string) (file string, err error) {
	if dir == "" {
		return "", fmt.Errorf("no directory to compile container %s into", c.name)
	}
	path := filepath.Join(dir, c.FileName())
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	start := c.clock.Now()
	var entries int
	defer func() {
		c.log.LogEvent(&dievent.Compiled{
			File:          file,
			ContainerName: c.name,
			Entries:       entries,
			Runtime:       c.clock.Since(start),
			Err:           err,
		})
	}()

	data, n, err := c.Render(src)
	if err != nil {
		return "", err
	}
	if err := gen.WriteNew(path, data); err != nil {
		return "", err
	}
	entries = n
	return path, nil
}

// Render returns the formatted source of the container compiled from src and
// the number of entries in its table.
func (c *Compiler) Render(src source.Source) ([]byte, int, error) {
	defs, err := src.Definitions()
	if err != nil {
		return nil, 0, err
	}

	f := gen.NewFile(c.pkgPath)
	diPkg := f.Import(_diPath, "di")

	var (
		names    []string
		routines = make(map[string]*routine)
		byFunc   = make(map[string]string)
		queue    []string
		errs     error
	)
	for name := range defs {
		queue = append(queue, name)
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, done := routines[name]; done {
			continue
		}

		def, ok := defs[name]
		if !ok {
			// Referenced entry: compiled only when a source can define it.
			if def, err = src.GetDefinition(name); err != nil {
				errs = multierr.Append(errs, &EntryError{Name: name, Err: err})
				continue
			}
			if def == nil {
				continue
			}
		}

		r, err := c.routine(f, diPkg, name, def)
		routines[name] = r
		if err != nil {
			errs = multierr.Append(errs, &EntryError{Name: name, Err: err})
			continue
		}
		if other, taken := byFunc[r.fn]; taken {
			errs = multierr.Append(errs, fmt.Errorf("entries %q and %q share the routine name %s", other, name, r.fn))
			continue
		}
		byFunc[r.fn] = name
		names = append(names, name)

		refs := append([]string(nil), r.refs...)
		sort.Strings(refs)
		queue = append(queue, refs...)
	}
	errs = multierr.Append(errs, f.Err())
	if errs != nil {
		return nil, 0, &CompilationError{ContainerName: c.name, Err: errs}
	}
	sort.Strings(names)

	var body bytes.Buffer
	fmt.Fprintf(&body, "func init() {\n%s.RegisterCompiled(%q, %s.CompiledEntries{\n", diPkg, c.name, diPkg)
	for _, name := range names {
		r := routines[name]
		if r.shared {
			fmt.Fprintf(&body, "%q: {Get: %s},\n", name, r.fn)
		} else {
			fmt.Fprintf(&body, "%q: {Get: %s, Unshared: true},\n", name, r.fn)
		}
	}
	body.WriteString("})\n}\n")
	for _, name := range names {
		r := routines[name]
		fmt.Fprintf(&body, "\n// %s builds %q.\nfunc %s(c *%s.Compiled) (interface{}, error) {\n%s}\n",
			r.fn, name, r.fn, diPkg, r.body)
	}

	var out bytes.Buffer
	out.WriteString("// Code generated by dicompile. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", c.pkg)
	out.WriteString(f.Imports())
	out.WriteString("\n")
	out.Write(body.Bytes())

	formatted, err := gen.Format(c.FileName(), out.Bytes())
	if err != nil {
		return nil, 0, &CompilationError{ContainerName: c.name, Err: err}
	}
	return formatted, len(names), nil
}

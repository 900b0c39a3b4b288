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

package source

import (
	"reflect"
	"strings"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/internal/direflect"
)

// _injectTag is the struct tag read by tag-based autowiring:
//
//	type Handler struct {
//		Logger *zap.Logger `inject:""`
//		Cache  Cache       `inject:"cache.redis,optional"`
//	}
const _injectTag = "inject"

var _inType = reflect.TypeOf(definition.In{})

// autowirer infers definitions from the declared types of constructor
// parameters and, with tags enabled, from inject struct tags.
type autowirer struct {
	registry     *definition.Registry
	tags         bool
	ignoreErrors bool
}

func (a *autowirer) GetDefinition(name string) (definition.Definition, error) {
	class, ok := a.registry.Class(name)
	if !ok || !class.Instantiable() {
		return nil, nil
	}
	return a.Autowire(&definition.Object{EntryName: name})
}

func (a *autowirer) Definitions() (map[string]definition.Definition, error) {
	return map[string]definition.Definition{}, nil
}

func (a *autowirer) Autowire(obj *definition.Object) (*definition.Object, error) {
	if obj.Type != nil {
		if _, ok := a.registry.Class(obj.Class()); !ok {
			if _, err := a.registry.RegisterAs(obj.Class(), obj.Type); err != nil {
				return nil, err
			}
		}
	}
	class, ok := a.registry.Class(obj.Class())
	if !ok {
		return obj, nil
	}

	args := make(map[int]definition.Definition)
	for i := range class.Params() {
		if _, set := obj.Constructor[i]; set {
			continue
		}
		hint, err := a.ParameterHint(class, i)
		if err != nil {
			return nil, err
		}
		if hint != nil {
			args[i] = hint
		}
	}
	obj = obj.WithConstructorArgs(args)

	props, err := a.PropertyHints(class)
	if err != nil {
		return nil, err
	}
	return obj.WithProperties(props), nil
}

func (a *autowirer) ParameterHint(class *definition.Class, i int) (definition.Definition, error) {
	params := class.Params()
	if i < 0 || i >= len(params) || (class.Variadic() && i == len(params)-1) {
		return nil, nil
	}
	return a.TypeHint(params[i])
}

// TypeHint infers the entry injected for a value of type t. Named types,
// pointers to named types and interfaces are looked up as entries named
// after the type. Pointers to structs are registered so they can be
// autowired in turn. Unnamed types cannot be inferred.
func (a *autowirer) TypeHint(t reflect.Type) (definition.Definition, error) {
	if a.tags && definition.IsIn(t) {
		return a.paramStruct(t)
	}

	name := direflect.TypeName(t)
	if _, ok := a.registry.Class(name); ok {
		return &definition.Reference{Target: name}, nil
	}
	switch {
	case t.Kind() == reflect.Interface && t.Name() != "":
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct && t.Elem().Name() != "":
		a.registry.RegisterImplicit(t)
	case t.Kind() == reflect.Ptr && t.Elem().Name() != "":
	case t.Name() != "" && t.PkgPath() != "":
	default:
		return nil, nil
	}
	return &definition.Reference{Target: name}, nil
}

func (a *autowirer) PropertyHints(class *definition.Class) (map[string]definition.Definition, error) {
	if !a.tags {
		return nil, nil
	}
	st, ok := class.Struct()
	if !ok || definition.IsIn(st) {
		return nil, nil
	}

	props := make(map[string]definition.Definition)
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup(_injectTag)
		if !ok || tag == "-" {
			continue
		}
		ref, err := a.fieldHint(class.Name, f, tag)
		if err != nil {
			if a.ignoreErrors {
				continue
			}
			return nil, err
		}
		props[f.Name] = ref
	}
	return props, nil
}

// paramStruct builds the struct embedding definition.In whose exported
// fields are all injected.
func (a *autowirer) paramStruct(t reflect.Type) (definition.Definition, error) {
	class := a.registry.RegisterImplicit(t)
	props := make(map[string]definition.Definition)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == _inType {
			continue
		}
		tag := f.Tag.Get(_injectTag)
		if tag == "-" || (f.PkgPath != "" && tag == "") {
			continue
		}
		ref, err := a.fieldHint(class.Name, f, tag)
		if err != nil {
			if a.ignoreErrors {
				continue
			}
			return nil, err
		}
		props[f.Name] = ref
	}
	return &definition.Object{ClassName: class.Name, Type: t, Properties: props}, nil
}

func (a *autowirer) fieldHint(className string, f reflect.StructField, tag string) (definition.Definition, error) {
	if f.PkgPath != "" {
		return nil, definition.InvalidDefinitionf(className, "field %s is not exported and cannot be injected", f.Name)
	}

	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	optional := false
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "optional":
			optional = true
		default:
			return nil, definition.InvalidDefinitionf(className, "field %s has an unknown %s option %q", f.Name, _injectTag, opt)
		}
	}

	if name == "" {
		hint, err := a.TypeHint(f.Type)
		if err != nil {
			return nil, err
		}
		ref, ok := hint.(*definition.Reference)
		if !ok {
			return nil, definition.InvalidDefinitionf(className, "the entry injected into field %s cannot be inferred from type %v, name it in the %s tag", f.Name, f.Type, _injectTag)
		}
		name = ref.Target
	}
	return &definition.Reference{Target: name, Optional: optional}, nil
}

// ReflectionAutowiring infers constructor parameters from their declared
// types.
type ReflectionAutowiring struct {
	autowirer
}

var _ Autowiring = (*ReflectionAutowiring)(nil)

// NewReflectionAutowiring returns an autowiring source over the classes of
// registry.
func NewReflectionAutowiring(registry *definition.Registry) *ReflectionAutowiring {
	return &ReflectionAutowiring{autowirer{registry: registry}}
}

// TagAutowiring extends ReflectionAutowiring with inject struct tags on the
// fields of autowired structs and parameter structs embedding
// definition.In. Malformed tags fail unless ignoreErrors is set, in which
// case the field is skipped.
type TagAutowiring struct {
	autowirer
}

var _ Autowiring = (*TagAutowiring)(nil)

// NewTagAutowiring returns a tag-based autowiring source over the classes of
// registry.
func NewTagAutowiring(registry *definition.Registry, ignoreErrors bool) *TagAutowiring {
	return &TagAutowiring{autowirer{registry: registry, tags: true, ignoreErrors: ignoreErrors}}
}

// NoAutowiring infers nothing. Registered classes requested without an
// explicit definition fail with an InvalidDefinitionError.
type NoAutowiring struct {
	registry *definition.Registry
}

var _ Autowiring = (*NoAutowiring)(nil)

// NewNoAutowiring returns the source used when autowiring is disabled.
func NewNoAutowiring(registry *definition.Registry) *NoAutowiring {
	return &NoAutowiring{registry: registry}
}

// GetDefinition implements Source.
func (n *NoAutowiring) GetDefinition(name string) (definition.Definition, error) {
	if _, ok := n.registry.Class(name); ok {
		return nil, definition.InvalidDefinitionf(name, "autowiring is disabled, the entry must be defined explicitly")
	}
	return nil, nil
}

// Definitions implements Source.
func (n *NoAutowiring) Definitions() (map[string]definition.Definition, error) {
	return map[string]definition.Definition{}, nil
}

// Autowire returns obj unchanged.
func (n *NoAutowiring) Autowire(obj *definition.Object) (*definition.Object, error) {
	return obj, nil
}

// TypeHint implements definition.HintResolver.
func (n *NoAutowiring) TypeHint(reflect.Type) (definition.Definition, error) { return nil, nil }

// ParameterHint implements definition.HintResolver.
func (n *NoAutowiring) ParameterHint(*definition.Class, int) (definition.Definition, error) {
	return nil, nil
}

// PropertyHints implements definition.HintResolver.
func (n *NoAutowiring) PropertyHints(*definition.Class) (map[string]definition.Definition, error) {
	return nil, nil
}

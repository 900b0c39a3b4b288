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
	"fmt"
	"regexp"

	"github.com/pkg/errors"

	"github.com/dimod/di/definition"
	"github.com/dimod/di/env"
)

type valueResolver struct{}

func (*valueResolver) Resolve(def definition.Definition, _ map[int]interface{}) (interface{}, error) {
	return def.(*definition.Value).Value, nil
}

func (*valueResolver) IsResolvable(definition.Definition) bool { return true }

type referenceResolver struct {
	container Container
}

func (r *referenceResolver) Resolve(def definition.Definition, _ map[int]interface{}) (interface{}, error) {
	ref := def.(*definition.Reference)
	if ref.Optional && !r.container.Has(ref.Target) {
		return nil, nil
	}
	return r.container.Get(ref.Target)
}

func (r *referenceResolver) IsResolvable(def definition.Definition) bool {
	ref := def.(*definition.Reference)
	return ref.Optional || r.container.Has(ref.Target)
}

type envResolver struct {
	d   *Dispatcher
	env *env.Environment
}

func (r *envResolver) Resolve(def definition.Definition, _ map[int]interface{}) (interface{}, error) {
	e := def.(*definition.EnvironmentVariable)
	raw, ok := r.env.Lookup(e.Variable)
	if ok {
		v, err := env.Cast(raw, e.Cast)
		if err != nil {
			return nil, &definition.InvalidDefinitionError{
				Name:   e.Name(),
				Reason: fmt.Sprintf("environment variable %q cannot be cast to %s", e.Variable, e.Cast),
				Err:    err,
			}
		}
		return v, nil
	}

	switch {
	case e.Default != nil:
		return r.d.Resolve(e.Default, nil)
	case e.Optional:
		return nil, nil
	}
	return nil, definition.InvalidDefinitionf(e.Name(), "the environment variable %q has not been defined", e.Variable)
}

func (r *envResolver) IsResolvable(def definition.Definition) bool {
	e := def.(*definition.EnvironmentVariable)
	if _, ok := r.env.Lookup(e.Variable); ok {
		return true
	}
	return e.Optional || e.Default != nil
}

// _placeholder matches the {entry} placeholders of string expressions.
var _placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

type stringResolver struct {
	container Container
}

func (r *stringResolver) Resolve(def definition.Definition, _ map[int]interface{}) (interface{}, error) {
	return Expand(def.(*definition.String).Expression, r.container.Get)
}

func (*stringResolver) IsResolvable(definition.Definition) bool { return true }

// Expand replaces the {entry} placeholders of expr with the string form of
// the entries returned by get.
func Expand(expr string, get func(string) (interface{}, error)) (string, error) {
	var err error
	out := _placeholder.ReplaceAllStringFunc(expr, func(m string) string {
		if err != nil {
			return m
		}
		name := m[1 : len(m)-1]
		var v interface{}
		if v, err = get(name); err != nil {
			err = errors.Wrapf(err, "error while parsing string expression %q", expr)
			return m
		}
		return fmt.Sprint(v)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// Placeholders returns the entry names referenced by expr.
func Placeholders(expr string) []string {
	var names []string
	for _, m := range _placeholder.FindAllStringSubmatch(expr, -1) {
		names = append(names, m[1])
	}
	return names
}

type arrayResolver struct {
	d *Dispatcher
}

func (r *arrayResolver) Resolve(def definition.Definition, _ map[int]interface{}) (interface{}, error) {
	arr := def.(*definition.Array)
	values := make([]interface{}, len(arr.Values))
	for i, v := range arr.Values {
		resolved, err := r.d.Resolve(v, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "error while resolving %s[%d]", arr.Name(), i)
		}
		values[i] = resolved
	}
	return values, nil
}

func (*arrayResolver) IsResolvable(definition.Definition) bool { return true }

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

package definition

import "reflect"

// HintResolver infers what to inject where no explicit definition says so.
// The container ships two strategies: one based on declared Go types and one
// that also reads `inject` struct tags.
type HintResolver interface {
	// TypeHint returns the definition injected for a parameter of type t, or
	// nil when nothing can be inferred.
	TypeHint(t reflect.Type) (Definition, error)

	// ParameterHint returns the definition injected into constructor
	// parameter i of class, or nil when nothing can be inferred.
	ParameterHint(class *Class, i int) (Definition, error)

	// PropertyHints returns the definitions injected into the fields of
	// class, keyed by field name.
	PropertyHints(class *Class) (map[string]Definition, error)
}

// In can be embedded in a constructor's parameter struct. Each exported
// field of such a struct is injected on its own, honoring `inject` tags:
//
//	type MailerParams struct {
//		definition.In
//
//		Logger *zap.Logger
//		Host   string `inject:"mailer.host"`
//		Cache  Cache  `inject:",optional"`
//	}
type In struct{}

var _inType = reflect.TypeOf(In{})

// IsIn reports whether t is a struct embedding In.
func IsIn(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == _inType {
			return true
		}
	}
	return false
}

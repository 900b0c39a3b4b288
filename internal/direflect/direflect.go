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

// Package direflect holds the reflection helpers shared by the container,
// the resolvers and the code generators.
package direflect

import (
	"fmt"
	"go/token"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// ErrorType is the reflect.Type of the error interface.
var ErrorType = reflect.TypeOf((*error)(nil)).Elem()

// TypeName returns the canonical entry name for t: the full import path of
// named types, with pointer, slice, array and map wrappers kept around it.
//
//	*github.com/acme/app.Mailer
//	[]github.com/acme/app.Plugin
//	string
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.Name()
		}
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), TypeName(t.Elem()))
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	}
	return t.String()
}

// IsErr reports whether t implements error.
func IsErr(t reflect.Type) bool {
	return t.Implements(ErrorType)
}

// ReturnTypes takes a func and returns a slice of string'd types, skipping
// errors.
func ReturnTypes(t interface{}) []string {
	rtypes := []string{}
	fn := reflect.ValueOf(t).Type()

	for i := 0; i < fn.NumOut(); i++ {
		if !IsErr(fn.Out(i)) {
			rtypes = append(rtypes, TypeName(fn.Out(i)))
		}
	}

	return rtypes
}

// FuncName returns a funcs formatted name
func FuncName(fn interface{}) string {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		return "n/a"
	}

	fnName := runtime.FuncForPC(fnV.Pointer()).Name()
	return fmt.Sprintf("%s()", fnName)
}

// Anonymous functions and method values get synthesized names such as
// pkg.Outer.func1, pkg.glob..func2 or pkg.(*T).M-fm.
var _synthesized = regexp.MustCompile(`(\.func\d+(\.\d+)*$)|(-fm$)|(\.glob\.)`)

// IsClosure reports whether fn is an anonymous function or a method value,
// that is, a function that cannot be referred to by name from generated code.
func IsClosure(fn interface{}) bool {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func || fnV.IsNil() {
		return false
	}
	f := runtime.FuncForPC(fnV.Pointer())
	if f == nil {
		return true
	}
	return _synthesized.MatchString(f.Name())
}

// StaticFunc splits the name of a package-level function into its import
// path and identifier. ok is false for closures, methods, generic
// instantiations, unexported functions and functions of package main, which
// generated code cannot refer to.
func StaticFunc(fn interface{}) (pkgPath, name string, ok bool) {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func || fnV.IsNil() || IsClosure(fn) {
		return "", "", false
	}
	f := runtime.FuncForPC(fnV.Pointer())
	if f == nil {
		return "", "", false
	}
	full := f.Name()
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return "", "", false
	}
	dot += slash + 1
	pkgPath = strings.ReplaceAll(full[:dot], "%2e", ".")
	name = full[dot+1:]
	if pkgPath == "main" || !token.IsIdentifier(name) || !token.IsExported(name) {
		return "", "", false
	}
	return pkgPath, name, true
}

// Caller returns the formatted calling func name
func Caller() string {
	// Ascend at most 8 frames looking for a caller outside the container.
	pcs := make([]uintptr, 8)

	// Don't include this frame.
	n := runtime.Callers(1, pcs)
	if n == 0 {
		return "n/a"
	}

	frames := runtime.CallersFrames(pcs[:n])
	for f, more := frames.Next(); more; f, more = frames.Next() {
		if shouldIgnoreFrame(f) {
			continue
		}
		return f.Function
	}
	return "n/a"
}

// Ascend the call stack until we leave the container's production code.
func shouldIgnoreFrame(f runtime.Frame) bool {
	if strings.Contains(f.File, "_test.go") {
		return false
	}
	if strings.Contains(f.File, "github.com/dimod/di") || strings.HasPrefix(f.Function, "github.com/dimod/di") {
		return true
	}
	return strings.HasPrefix(f.Function, "runtime.")
}

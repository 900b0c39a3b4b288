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

// Package gen renders Go type expressions and literals for generated source
// files, tracking the imports they need.
package gen

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/multierr"
	"golang.org/x/tools/imports"
)

// File collects the imports of a generated file.
type File struct {
	pkgPath string
	byPath  map[string]string
	byName  map[string]string
	err     error
}

// NewFile returns a file for the package at pkgPath. Types of that package
// are rendered unqualified. pkgPath may be empty.
func NewFile(pkgPath string) *File {
	return &File{
		pkgPath: pkgPath,
		byPath:  make(map[string]string),
		byName:  make(map[string]string),
	}
}

// Import adds an import of path and returns the name to qualify its
// identifiers with. name is the package name, used when free.
func (f *File) Import(path, name string) string {
	if alias, ok := f.byPath[path]; ok {
		return alias
	}
	alias := name
	for i := 2; ; i++ {
		if _, taken := f.byName[alias]; !taken {
			break
		}
		alias = name + strconv.Itoa(i)
	}
	f.byPath[path] = alias
	f.byName[alias] = path
	return alias
}

// PackageName guesses a valid package name for the import path, skipping
// major version suffixes.
func PackageName(importPath string) string {
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}

	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || (unicode.IsDigit(r) && b.Len() > 0) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return "pkg"
	}
	return b.String()
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// Imports renders the import declaration.
func (f *File) Imports() string {
	if len(f.byPath) == 0 {
		return ""
	}
	paths := make([]string, 0, len(f.byPath))
	for p := range f.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "\t%s %q\n", f.byPath[p], p)
	}
	b.WriteString(")\n")
	return b.String()
}

// Err returns the errors met while rendering, such as types that have no
// spelling outside their package.
func (f *File) Err() error { return f.err }

// Type renders t, importing the packages it refers to.
func (f *File) Type(t reflect.Type) string {
	if t.Name() != "" {
		if strings.ContainsRune(t.Name(), '[') {
			f.err = multierr.Append(f.err, fmt.Errorf("instantiated generic type %v cannot be rendered", t))
		}
		if t.PkgPath() == "" {
			return t.Name()
		}
		if t.PkgPath() == f.pkgPath {
			return t.Name()
		}
		if !isExported(t.Name()) {
			f.err = multierr.Append(f.err, fmt.Errorf("type %v is not exported", t))
		}
		if t.PkgPath() == "main" {
			f.err = multierr.Append(f.err, fmt.Errorf("type %v of package main cannot be imported", t))
		}
		name := t.String()[:strings.LastIndex(t.String(), "."+t.Name())]
		return f.Import(t.PkgPath(), name) + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Ptr:
		return "*" + f.Type(t.Elem())
	case reflect.Slice:
		return "[]" + f.Type(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), f.Type(t.Elem()))
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", f.Type(t.Key()), f.Type(t.Elem()))
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + f.Type(t.Elem())
		case reflect.SendDir:
			return "chan<- " + f.Type(t.Elem())
		}
		return "chan " + f.Type(t.Elem())
	case reflect.Func:
		return "func" + f.Signature(t, nil)
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "interface{}"
		}
		methods := make([]string, t.NumMethod())
		for i := range methods {
			m := t.Method(i)
			methods[i] = m.Name + f.Signature(m.Type, nil)
		}
		return "interface{ " + strings.Join(methods, "; ") + " }"
	case reflect.Struct:
		fields := make([]string, t.NumField())
		for i := range fields {
			sf := t.Field(i)
			field := sf.Name + " " + f.Type(sf.Type)
			if sf.Anonymous {
				field = f.Type(sf.Type)
			}
			if sf.Tag != "" {
				field += " " + strconv.Quote(string(sf.Tag))
			}
			fields[i] = field
		}
		return "struct{ " + strings.Join(fields, "; ") + " }"
	}
	f.err = multierr.Append(f.err, fmt.Errorf("type %v cannot be rendered", t))
	return t.String()
}

// Signature renders the parameters and results of the function type t. If
// names is not nil, parameters are named after it.
func (f *File) Signature(t reflect.Type, names []string) string {
	params := make([]string, t.NumIn())
	for i := range params {
		var typ string
		if t.IsVariadic() && i == t.NumIn()-1 {
			typ = "..." + f.Type(t.In(i).Elem())
		} else {
			typ = f.Type(t.In(i))
		}
		if names != nil {
			typ = names[i] + " " + typ
		}
		params[i] = typ
	}

	results := make([]string, t.NumOut())
	for i := range results {
		results[i] = f.Type(t.Out(i))
	}

	sig := "(" + strings.Join(params, ", ") + ")"
	switch len(results) {
	case 0:
	case 1:
		sig += " " + results[0]
	default:
		sig += " (" + strings.Join(results, ", ") + ")"
	}
	return sig
}

// Literal renders v, which must be plain data (see definition.IsPlainData),
// as a Go expression evaluating to an equal value of the same type.
func (f *File) Literal(v interface{}) (string, error) {
	if v == nil {
		return "nil", nil
	}
	return f.literal(reflect.ValueOf(v))
}

func (f *File) literal(rv reflect.Value) (string, error) {
	t := rv.Type()
	if t.Name() != "" && t.PkgPath() != "" {
		return "", fmt.Errorf("values of named type %v have no literal form", t)
	}

	switch t.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.String:
		return strconv.Quote(rv.String()), nil
	case reflect.Int:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%s(%d)", t.Name(), rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%s(%d)", t.Name(), rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		fl := rv.Float()
		if math.IsInf(fl, 0) || math.IsNaN(fl) {
			return "", fmt.Errorf("%v has no literal form", fl)
		}
		return fmt.Sprintf("%s(%s)", t.Name(), strconv.FormatFloat(fl, 'g', -1, t.Bits())), nil
	case reflect.Interface:
		if rv.IsNil() {
			return "nil", nil
		}
		return f.literal(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return fmt.Sprintf("%s(nil)", f.Type(t)), nil
		}
		elems := make([]string, rv.Len())
		for i := range elems {
			s, err := f.literal(rv.Index(i))
			if err != nil {
				return "", err
			}
			elems[i] = s
		}
		return f.Type(t) + "{" + strings.Join(elems, ", ") + "}", nil
	case reflect.Map:
		if rv.IsNil() {
			return fmt.Sprintf("%s(nil)", f.Type(t)), nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		elems := make([]string, len(keys))
		for i, k := range keys {
			ks, err := f.literal(k)
			if err != nil {
				return "", err
			}
			vs, err := f.literal(rv.MapIndex(k))
			if err != nil {
				return "", err
			}
			elems[i] = ks + ": " + vs
		}
		return f.Type(t) + "{" + strings.Join(elems, ", ") + "}", nil
	}
	return "", fmt.Errorf("values of type %v have no literal form", t)
}

// Format formats src like gofmt and sorts its imports. filename is used for
// error messages only.
func Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
}

func isExported(name string) bool {
	return name != "" && strings.ToUpper(name[:1]) == name[:1]
}

// WriteNew atomically writes data to path. It fails with an error matching
// fs.ErrExist when path exists, and leaves nothing behind on failure.
func WriteNew(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, fs.ErrExist)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gen-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

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

package proxy

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/dimod/di/internal/gen"
)

const _proxyPkg = "github.com/dimod/di/proxy"

// Generator writes proxy source files for interfaces.
type Generator struct {
	// Dir is the directory of the generated package.
	Dir string

	// Package is the name of the generated package. Defaults to "proxies".
	Package string

	// PkgPath is the import path of the generated package, if known.
	PkgPath string
}

// FileName returns the file the proxy of t is written to.
func (g *Generator) FileName(t reflect.Type) string {
	name := strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
	return filepath.Join(g.Dir, name+"_proxy.go")
}

// Generate writes the proxy of t unless its file exists, and returns the
// file name.
func (g *Generator) Generate(t reflect.Type) (string, error) {
	file := g.FileName(t)
	src, err := g.Source(t)
	if err != nil {
		return "", err
	}
	if err := gen.WriteNew(file, src); err != nil && !errors.Is(err, fs.ErrExist) {
		return "", err
	}
	return file, nil
}

// Source renders the proxy of the interface t.
func (g *Generator) Source(t reflect.Type) ([]byte, error) {
	if t.Kind() != reflect.Interface || t.Name() == "" {
		return nil, fmt.Errorf("proxies can only be generated for named interfaces, got %v", t)
	}

	pkg := g.Package
	if pkg == "" {
		pkg = "proxies"
	}
	f := gen.NewFile(g.PkgPath)
	proxyPkg := f.Import(_proxyPkg, "proxy")
	iface := f.Type(t)
	typeName := lowerFirst(t.Name()) + "Proxy"

	var body bytes.Buffer
	fmt.Fprintf(&body, "func init() {\n\t%s.Register(func(l *%s.Lazy[%s]) %s { return &%s{l: l} })\n}\n\n",
		proxyPkg, proxyPkg, iface, iface, typeName)
	fmt.Fprintf(&body, "type %s struct {\n\tl *%s.Lazy[%s]\n}\n", typeName, proxyPkg, iface)

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if m.PkgPath != "" {
			return nil, fmt.Errorf("interface %v has unexported method %s", t, m.Name)
		}

		names := make([]string, m.Type.NumIn())
		args := make([]string, len(names))
		for j := range names {
			names[j] = fmt.Sprintf("a%d", j)
			args[j] = names[j]
		}
		if m.Type.IsVariadic() {
			args[len(args)-1] += "..."
		}

		call := fmt.Sprintf("p.l.Get().%s(%s)", m.Name, strings.Join(args, ", "))
		if m.Type.NumOut() > 0 {
			call = "return " + call
		}
		fmt.Fprintf(&body, "\nfunc (p *%s) %s%s {\n\t%s\n}\n", typeName, m.Name, f.Signature(m.Type, names), call)
	}
	if err := f.Err(); err != nil {
		return nil, err
	}

	var src bytes.Buffer
	fmt.Fprintf(&src, "// Code generated by %s. DO NOT EDIT.\n\npackage %s\n\n", _proxyPkg, pkg)
	src.WriteString(f.Imports())
	src.WriteString("\n")
	src.Write(body.Bytes())
	return gen.Format(g.FileName(t), src.Bytes())
}

func lowerFirst(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

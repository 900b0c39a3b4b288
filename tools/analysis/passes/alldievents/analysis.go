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

// Package alldievents implements a Go analysis pass that verifies that a
// dievent.Logger implementation handles every dievent event type. Loggers
// that handle no event type at all, such as no-op or fake loggers, are
// ignored.
//
// This is meant for use within this module only.
package alldievents

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// DieventPath is the import path of the package declaring the events.
const DieventPath = "github.com/dimod/di/dievent"

// Analyzer reports the dievent.Loggers that leave event types unhandled.
var Analyzer = &analysis.Analyzer{
	Name:     "alldievents",
	Doc:      "check for unhandled dievent.Events",
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

var _nodes = []ast.Node{
	&ast.File{},
	&ast.FuncDecl{},
	&ast.CaseClause{},
	&ast.TypeAssertExpr{},
}

func run(pass *analysis.Pass) (interface{}, error) {
	pkg, ok := findPackage(pass.Pkg, DieventPath)
	if !ok {
		return nil, nil
	}

	c := checker{
		events: loadEvents(pkg),
		fset:   pass.Fset,
		info:   pass.TypesInfo,
		report: pass.Report,
	}
	pass.ResultOf[inspect.Analyzer].(*inspector.Inspector).Nodes(_nodes, c.visit)
	return nil, nil
}

type checker struct {
	events eventPackage
	fset   *token.FileSet
	info   *types.Info
	report func(analysis.Diagnostic)

	// logger is the receiver of the LogEvent method being inspected, and
	// unhandled the events it has not mentioned yet.
	logger    types.Type
	unhandled *typeSet
}

func (c *checker) visit(n ast.Node, push bool) bool {
	if !push {
		if fn, ok := n.(*ast.FuncDecl); ok {
			c.leaveFunc(fn)
		}
		return false
	}

	switch n := n.(type) {
	case *ast.File:
		// Test files may hold partial loggers.
		return !strings.HasSuffix(c.fset.File(n.Pos()).Name(), "_test.go")

	case *ast.FuncDecl:
		return c.enterFunc(n)

	case *ast.CaseClause:
		for _, expr := range n.List {
			c.handled(c.info.Types[expr].Type)
		}
		return true

	case *ast.TypeAssertExpr:
		c.handled(c.info.Types[n.Type].Type)
	}
	return false
}

func (c *checker) handled(t types.Type) {
	if t != nil && c.unhandled != nil {
		c.unhandled.Remove(t)
	}
}

func (c *checker) enterFunc(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || fn.Name.Name != "LogEvent" {
		return false
	}
	t := c.info.Types[fn.Recv.List[0].Type].Type
	if t == nil || !types.Implements(t, c.events.loggerInterface) {
		return false
	}

	c.logger = t
	c.unhandled = c.events.all.Clone()
	return true
}

func (c *checker) leaveFunc(fn *ast.FuncDecl) {
	unhandled := c.unhandled
	c.unhandled = nil
	if unhandled == nil {
		return
	}

	n := unhandled.Len()
	if n == 0 || n == c.events.all.Len() {
		return
	}

	missing := make([]string, 0, n)
	unhandled.Iterate(func(t types.Type) {
		missing = append(missing, types.TypeString(t, emptyQualifier))
	})
	sort.Strings(missing)

	c.report(analysis.Diagnostic{
		Pos:     fn.Pos(),
		Message: fmt.Sprintf("%v doesn't handle %v", types.TypeString(c.logger, emptyQualifier), missing),
	})
}

// findPackage returns pkg when its path is importPath, or the import of pkg
// with that path.
func findPackage(pkg *types.Package, importPath string) (*types.Package, bool) {
	if pkg.Path() == importPath {
		return pkg, true
	}
	for _, imp := range pkg.Imports() {
		if imp.Path() == importPath {
			return imp, true
		}
	}
	return nil, false
}

// eventPackage is the type information of the dievent package.
type eventPackage struct {
	loggerInterface *types.Interface
	all             typeSet
}

func loadEvents(pkg *types.Package) eventPackage {
	scope := pkg.Scope()
	event := scope.Lookup("Event").Type()

	var all typeSet
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		if name == "Event" || !obj.Exported() {
			continue
		}
		if _, ok := obj.(*types.TypeName); !ok {
			continue
		}

		t := obj.Type()
		if !types.ConvertibleTo(t, event) {
			t = types.NewPointer(t)
			if !types.ConvertibleTo(t, event) {
				continue
			}
		}
		all.Put(t)
	}

	return eventPackage{
		loggerInterface: scope.Lookup("Logger").Type().Underlying().(*types.Interface),
		all:             all,
	}
}

// typeSet is a set of types. The zero value is empty.
type typeSet struct{ m typeutil.Map }

func (ts *typeSet) Len() int { return ts.m.Len() }

func (ts *typeSet) Put(t types.Type) { ts.m.Set(t, struct{}{}) }

func (ts *typeSet) Remove(t types.Type) bool { return ts.m.Delete(t) }

func (ts *typeSet) Iterate(f func(types.Type)) {
	ts.m.Iterate(func(t types.Type, _ interface{}) { f(t) })
}

func (ts *typeSet) Clone() *typeSet {
	var out typeSet
	ts.Iterate(out.Put)
	return &out
}

// emptyQualifier prints type names without their package path.
func emptyQualifier(*types.Package) string { return "" }

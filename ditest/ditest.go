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

// Package ditest builds containers in tests.
package ditest

import (
	"github.com/dimod/di"
)

// TB is a subset of the standard library's testing.TB interface. It's
// satisfied by both *testing.T and *testing.B.
type TB interface {
	Logf(string, ...interface{})
	Errorf(string, ...interface{})
	FailNow()
}

// New builds a container, failing the test if the options are invalid or
// the build fails. Container events are written to the test log.
func New(tb TB, opts ...di.Option) *di.Container {
	opts = append([]di.Option{di.WithLogger(NewTestLogger(tb))}, opts...)
	c, err := di.New(opts...)
	if err != nil {
		tb.Errorf("container didn't build cleanly: %v", err)
		tb.FailNow()
	}
	return c
}

// RequireGet returns the entry named after T, failing the test if it cannot
// be built.
func RequireGet[T any](tb TB, c *di.Container) T {
	v, err := di.Get[T](c)
	if err != nil {
		tb.Errorf("cannot get %s: %v", di.NameOf[T](), err)
		tb.FailNow()
	}
	return v
}

// RequireEntry returns the entry called name, failing the test if it cannot
// be built.
func RequireEntry(tb TB, c *di.Container, name string) interface{} {
	v, err := c.Get(name)
	if err != nil {
		tb.Errorf("cannot get %q: %v", name, err)
		tb.FailNow()
	}
	return v
}
